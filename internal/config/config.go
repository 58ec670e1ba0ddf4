package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// UpstreamURL is the base URL of the public Bluesky AppView.
	UpstreamURL string

	// Query is the search term used to find photo posts.
	Query string

	// Limit is the maximum number of raw records fetched per poll (1-100).
	Limit int

	// RefreshInterval is how often the background refresh runs.
	RefreshInterval time.Duration

	// IncludeLabeled keeps moderation-labeled posts, with their labels
	// attached, instead of filtering them out.
	IncludeLabeled bool

	// UpstreamTimeout bounds each upstream HTTP call.
	UpstreamTimeout time.Duration

	// UpstreamRPS is the client-side rate limit on upstream calls, in
	// requests per second.
	UpstreamRPS float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3001
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	upstreamURL := os.Getenv("PHOTOS_API_URL")
	if upstreamURL == "" {
		upstreamURL = "https://public.api.bsky.app"
	}

	query := os.Getenv("PHOTOS_QUERY")
	if query == "" {
		query = "photography"
	}

	limit := 50
	if l := os.Getenv("PHOTOS_LIMIT"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			return nil, fmt.Errorf("invalid PHOTOS_LIMIT: %w", err)
		}
	}
	if limit < 1 || limit > 100 {
		return nil, fmt.Errorf("PHOTOS_LIMIT must be between 1 and 100, got %d", limit)
	}

	refreshInterval := 30 * time.Second
	if i := os.Getenv("PHOTOS_REFRESH_INTERVAL"); i != "" {
		var err error
		refreshInterval, err = time.ParseDuration(i)
		if err != nil {
			return nil, fmt.Errorf("invalid PHOTOS_REFRESH_INTERVAL: %w", err)
		}
		if refreshInterval <= 0 {
			return nil, fmt.Errorf("PHOTOS_REFRESH_INTERVAL must be positive, got %s", refreshInterval)
		}
	}

	includeLabeled := false
	if v := os.Getenv("PHOTOS_INCLUDE_LABELED"); v != "" {
		var err error
		includeLabeled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PHOTOS_INCLUDE_LABELED: %w", err)
		}
	}

	upstreamTimeout := 10 * time.Second
	if t := os.Getenv("PHOTOS_UPSTREAM_TIMEOUT"); t != "" {
		var err error
		upstreamTimeout, err = time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid PHOTOS_UPSTREAM_TIMEOUT: %w", err)
		}
		if upstreamTimeout <= 0 {
			return nil, fmt.Errorf("PHOTOS_UPSTREAM_TIMEOUT must be positive, got %s", upstreamTimeout)
		}
	}

	upstreamRPS := 1.0
	if r := os.Getenv("PHOTOS_UPSTREAM_RPS"); r != "" {
		var err error
		upstreamRPS, err = strconv.ParseFloat(r, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PHOTOS_UPSTREAM_RPS: %w", err)
		}
		if upstreamRPS <= 0 {
			return nil, fmt.Errorf("PHOTOS_UPSTREAM_RPS must be positive, got %v", upstreamRPS)
		}
	}

	return &Config{
		Port:            port,
		UpstreamURL:     upstreamURL,
		Query:           query,
		Limit:           limit,
		RefreshInterval: refreshInterval,
		IncludeLabeled:  includeLabeled,
		UpstreamTimeout: upstreamTimeout,
		UpstreamRPS:     upstreamRPS,
	}, nil
}
