package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/blackmichael/bsky-photo-gallery/internal/config"
	"github.com/blackmichael/bsky-photo-gallery/internal/domain"
)

// Server is the HTTP server that serves the photo gallery API.
type Server struct {
	cfg        *config.Config
	photos     *domain.PhotoService
	hub        *Hub
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server with the given photo service. The
// hub may be nil, in which case the live endpoint is not registered.
func NewServer(cfg *config.Config, photos *domain.PhotoService, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		photos: photos,
		hub:    hub,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/photos", s.handlePhotos)
	if hub != nil {
		mux.HandleFunc("GET /api/photos/live", s.handleLive)
	}
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, withCORS(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server
// is shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server and disconnects any
// live clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	posts, err := s.photos.Photos(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch photos", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch photos"})
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.photos.Snapshot()
	if err := s.hub.HandleConn(w, r, snapshot, ok); err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// withCORS applies the gallery's wide-open CORS policy. The API is
// read-only and public, so any origin may call it.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer so the live endpoint
// can upgrade the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}
