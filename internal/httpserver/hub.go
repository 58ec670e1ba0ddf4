package httpserver

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/blackmichael/bsky-photo-gallery/internal/domain"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Hub fans the latest photo snapshot out to connected WebSocket clients.
// It implements domain.SnapshotPublisher.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a hub with no connected clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			// Same wide-open policy as the CORS layer on the JSON routes.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// HandleConn upgrades the request, sends the current snapshot if one
// exists, and registers the connection for future pushes. The client
// side of the socket is drained and discarded; this is a push-only
// channel.
func (h *Hub) HandleConn(w http.ResponseWriter, r *http.Request, snapshot []domain.PhotoPost, hasSnapshot bool) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	// Register and send the initial snapshot under the same lock that
	// guards broadcast writes, so the client never misses a refresh that
	// lands mid-handshake and never sees interleaved writes.
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	if hasSnapshot {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(snapshot); err != nil {
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
			return err
		}
	}
	h.mu.Unlock()

	go h.drain(conn)
	return nil
}

// PublishSnapshot implements domain.SnapshotPublisher. Clients that fail
// the write are dropped.
func (h *Hub) PublishSnapshot(posts []domain.PhotoPost) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(posts); err != nil {
			h.logger.Warn("dropping live client", "error", err)
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

// drain reads and discards client frames until the connection dies, then
// deregisters it.
func (h *Hub) drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
