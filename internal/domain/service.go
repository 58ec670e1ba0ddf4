package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ServiceConfig holds the knobs for the photo service.
type ServiceConfig struct {
	// Query is the search term sent upstream.
	Query string

	// Limit is the maximum number of raw records fetched per poll.
	Limit int

	// LabelPolicy controls whether moderation-labeled posts are served.
	LabelPolicy LabelPolicy
}

// PhotoService is the core domain service. It owns the refresh loop, the
// cached snapshot, and the cold-start fallback path.
type PhotoService struct {
	cfg       ServiceConfig
	source    PhotoSource
	store     *Store
	publisher SnapshotPublisher // optional
	logger    *slog.Logger

	refreshing atomic.Bool
	coldStart  singleflight.Group
}

// NewPhotoService creates a PhotoService. The publisher may be nil.
func NewPhotoService(cfg ServiceConfig, source PhotoSource, publisher SnapshotPublisher, logger *slog.Logger) (*PhotoService, error) {
	if cfg.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if cfg.Limit < 1 || cfg.Limit > 100 {
		return nil, fmt.Errorf("limit must be between 1 and 100, got %d", cfg.Limit)
	}

	return &PhotoService{
		cfg:       cfg,
		source:    source,
		store:     NewStore(),
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Photos returns the latest committed snapshot. Staleness is the refresh
// loop's concern, not this method's. Before any refresh has completed it
// falls through to a synchronous upstream fetch shared across all
// concurrent callers, so the first reader after boot never waits for the
// next tick and never triggers more than one upstream call.
func (s *PhotoService) Photos(ctx context.Context) ([]PhotoPost, error) {
	if entry := s.store.Get(); entry.HasData() {
		return entry.Posts, nil
	}

	v, err, _ := s.coldStart.Do("cold-start", func() (any, error) {
		// A refresh may have landed while this caller waited on the group.
		if entry := s.store.Get(); entry.HasData() {
			return entry.Posts, nil
		}

		s.logger.Info("cold-start fetch", "query", s.cfg.Query, "limit", s.cfg.Limit)

		posts, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}

		s.store.Set(Entry{Posts: posts, FetchedAt: time.Now().UTC()})
		return posts, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cold-start fetch: %w", err)
	}

	return v.([]PhotoPost), nil
}

// Snapshot returns the current cached posts without ever touching the
// upstream. The second result is false while the cache is cold.
func (s *PhotoService) Snapshot() ([]PhotoPost, bool) {
	entry := s.store.Get()
	return entry.Posts, entry.HasData()
}

// StartRefreshJob runs the periodic refresh loop. It refreshes once
// immediately and then on every tick until ctx is cancelled. Ticks that
// fire while a refresh is still in flight are skipped, not queued.
func (s *PhotoService) StartRefreshJob(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one fetch-transform-store cycle. It returns false when
// another refresh was already in flight and this one was skipped. A
// failed refresh leaves the previous snapshot untouched; the next tick
// is the retry.
func (s *PhotoService) Refresh(ctx context.Context) bool {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.logger.Warn("refresh already in flight, skipping tick")
		return false
	}
	defer s.refreshing.Store(false)

	runID := uuid.NewString()
	start := time.Now()
	s.logger.Info("refresh start", "run_id", runID, "query", s.cfg.Query, "limit", s.cfg.Limit)

	posts, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("refresh failed, keeping previous snapshot", "run_id", runID, "error", err)
		return true
	}

	s.store.Set(Entry{Posts: posts, FetchedAt: time.Now().UTC()})
	s.logger.Info("refresh success", "run_id", runID, "count", len(posts), "duration", time.Since(start))

	if s.publisher != nil {
		s.publisher.PublishSnapshot(posts)
	}

	return true
}

func (s *PhotoService) fetch(ctx context.Context) ([]PhotoPost, error) {
	raws, err := s.source.SearchPosts(ctx, s.cfg.Query, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return ToPhotoPosts(raws, s.cfg.LabelPolicy), nil
}
