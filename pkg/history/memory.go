package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent entries in a ring buffer.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryStore creates a store that retains up to capacity entries.
// A non-positive capacity defaults to 100.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryStore{entries: make([]Entry, capacity)}
}

// Record implements Store. The oldest entry is evicted when full.
func (s *MemoryStore) Record(ctx context.Context, entry *Entry) error {
	prepare(entry)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = *entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.next
	if s.full {
		count = len(s.entries)
	}
	if limit > 0 && limit < count {
		count = limit
	}

	out := make([]Entry, 0, count)
	idx := s.next
	for i := 0; i < count; i++ {
		idx = (idx - 1 + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
