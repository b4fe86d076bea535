package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the cache backend consumed by the request executor. A fingerprint
// maps to at most one entry (last write wins); entries are never expired out
// of the store, only marked stale logically, so the stale-fallback path can
// still reach them.
type Store interface {
	// Get retrieves the entry stored under fingerprint, if any.
	Get(ctx context.Context, fingerprint string) (*Entry, bool)

	// Put stores an entry under fingerprint, replacing any previous one.
	Put(ctx context.Context, fingerprint string, entry *Entry)

	// Clear removes all entries.
	Clear(ctx context.Context)

	// Stats returns a diagnostic snapshot. It must not mutate the store.
	Stats(ctx context.Context) Stats
}

// Stats is a diagnostic snapshot of the store contents.
type Stats struct {
	Count   int          `json:"count"`
	Entries []EntryStats `json:"entries"`
}

// EntryStats describes one stored entry.
type EntryStats struct {
	Fingerprint  string        `json:"fingerprint"`
	Age          time.Duration `json:"age"`
	HasValidator bool          `json:"has_validator"`
}

// MemoryStore is the default in-process Store. It is unbounded: eviction is
// out of scope, and stale entries stay available for the fallback path.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves an entry. Unlike typical caches there is no expiry check
// here: staleness is the executor's decision, not the store's.
func (s *MemoryStore) Get(_ context.Context, fingerprint string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fingerprint]
	if ok {
		CacheHits.WithLabelValues("memory").Inc()
	} else {
		CacheMisses.Inc()
	}
	return entry, ok
}

// Put stores an entry. StoredAt is kept monotonically non-decreasing per
// fingerprint: a write carrying an older timestamp than the current entry
// inherits the current one.
func (s *MemoryStore) Put(_ context.Context, fingerprint string, entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[fingerprint]; ok && prev.StoredAt.After(entry.StoredAt) {
		entry.StoredAt = prev.StoredAt
	}
	entry.Fingerprint = fingerprint
	s.entries[fingerprint] = entry
}

// Clear removes all entries.
func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// Stats returns a point-in-time snapshot of the store.
func (s *MemoryStore) Stats(_ context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := Stats{
		Count:   len(s.entries),
		Entries: make([]EntryStats, 0, len(s.entries)),
	}
	for fingerprint, entry := range s.entries {
		stats.Entries = append(stats.Entries, EntryStats{
			Fingerprint:  fingerprint,
			Age:          entry.Age(now),
			HasValidator: entry.HasValidator(),
		})
	}
	return stats
}
