package domain

import (
	"sync"
	"time"
)

// Entry is one committed photo snapshot. A nil Posts slice means no
// refresh has ever succeeded (cold cache); an empty non-nil slice is a
// successful refresh that matched nothing.
type Entry struct {
	Posts     []PhotoPost
	FetchedAt time.Time
}

// HasData reports whether the entry holds a committed snapshot.
func (e Entry) HasData() bool {
	return e.Posts != nil
}

// Store holds the most recently accepted snapshot. Entries are replaced
// wholesale; readers see either the old entry in full or the new one in
// full, never a mix.
type Store struct {
	mu    sync.RWMutex
	entry Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the latest committed entry, or the empty initial entry.
// The returned posts slice is a copy; mutating it does not affect the
// store.
func (s *Store) Get() Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry.Posts == nil {
		return s.entry
	}

	posts := make([]PhotoPost, len(s.entry.Posts))
	copy(posts, s.entry.Posts)
	return Entry{Posts: posts, FetchedAt: s.entry.FetchedAt}
}

// Set atomically replaces the current entry.
func (s *Store) Set(entry Entry) {
	s.mu.Lock()
	s.entry = entry
	s.mu.Unlock()
}
