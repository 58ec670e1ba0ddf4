package domain

import "context"

// PhotoSource fetches raw photo-candidate posts from the upstream search
// API. Implementations make exactly one outbound call per invocation and
// do not retry; retry policy belongs to the caller.
type PhotoSource interface {
	// SearchPosts runs a single search and returns the raw results in
	// upstream order.
	SearchPosts(ctx context.Context, query string, limit int) ([]RawPost, error)
}

// SnapshotPublisher receives the new snapshot after every successful
// refresh. Implementations must not block the refresh loop for long.
type SnapshotPublisher interface {
	PublishSnapshot(posts []PhotoPost)
}
