package notify

import (
	"sort"
	"sync"
)

// InMemoryStore holds notification records in process memory, the reference
// behavior for this deployment. All operations are synchronous and complete
// in-memory.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[string]*Notification)}
}

func (s *InMemoryStore) Insert(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := n
	s.notifications[n.ID] = &stored
}

// ListForUser returns the user's notifications newest-first, at most limit.
// Each call re-reads current store state.
func (s *InMemoryStore) ListForUser(userID string, limit int) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MarkRead flips the notification to read. Reports whether the notification
// exists; re-marking an already-read notification is a successful no-op.
func (s *InMemoryStore) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return false
	}
	n.Read = true
	return true
}

// MarkAllRead marks every unread notification of the user as read. Reports
// whether at least one transitioned; a second immediate call returns false.
func (s *InMemoryStore) MarkAllRead(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := false
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated = true
		}
	}
	return updated
}

// Delete removes the notification, reporting whether it existed.
func (s *InMemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return false
	}
	delete(s.notifications, id)
	return true
}
