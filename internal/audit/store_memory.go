package audit

import (
	"context"
	"sync"
)

// Store persists audit entries. Queries return newest-first copies so
// callers can re-query and observe the current state.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
	ByResource(ctx context.Context, resource, resourceID string, limit int) ([]Entry, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// InMemoryStore keeps the audit trail in process memory, the reference
// behavior for this deployment. Entries arrive through the worker in
// chronological order, so newest-first is a backwards scan.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ByUser(_ context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(e Entry) bool { return e.UserID == userID }), nil
}

func (s *InMemoryStore) ByResource(_ context.Context, resource, resourceID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(e Entry) bool {
		if e.Resource != resource {
			return false
		}
		return resourceID == "" || e.ResourceID == resourceID
	}), nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(Entry) bool { return true }), nil
}

// collect scans newest-first under the caller's lock.
func (s *InMemoryStore) collect(limit int, match func(Entry) bool) []Entry {
	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if match(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out
}
