package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackmichael/bsky-photo-gallery/internal/bluesky"
	"github.com/blackmichael/bsky-photo-gallery/internal/config"
	"github.com/blackmichael/bsky-photo-gallery/internal/domain"
	"github.com/blackmichael/bsky-photo-gallery/internal/httpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	source := bluesky.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, cfg.UpstreamRPS)
	hub := httpserver.NewHub(logger)

	policy := domain.RejectLabeled
	if cfg.IncludeLabeled {
		policy = domain.IncludeLabeled
	}

	photos, err := domain.NewPhotoService(domain.ServiceConfig{
		Query:       cfg.Query,
		Limit:       cfg.Limit,
		LabelPolicy: policy,
	}, source, hub, logger)
	if err != nil {
		return fmt.Errorf("create photo service: %w", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the background refresh loop
	go photos.StartRefreshJob(ctx, cfg.RefreshInterval)

	// Start the HTTP server
	server := httpserver.NewServer(cfg, photos, hub, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started",
		"port", cfg.Port,
		"query", cfg.Query,
		"refresh_interval", cfg.RefreshInterval,
	)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
