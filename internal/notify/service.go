package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"shopgenie/internal/ws"
	"shopgenie/pkg/requestcontext"
)

// DefaultListLimit pages ListForUser when the caller passes no limit.
const DefaultListLimit = 50

// Broadcaster pushes a freshly created notification to the user's open
// connections. Delivery is best-effort: a target with no open connection
// receives nothing, and that is not an error.
type Broadcaster interface {
	BroadcastNotification(n ws.NotificationEvent)
}

// Service owns notification records and their real-time delivery. It only
// ever unicasts; producers that need role-cast call the registry's broadcast
// helpers directly with a synthesized payload.
type Service struct {
	store       *InMemoryStore
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     *Metrics
}

func NewService(store *InMemoryStore, broadcaster Broadcaster, logger *slog.Logger, metrics *Metrics) *Service {
	return &Service{store: store, broadcaster: broadcaster, logger: logger, metrics: metrics}
}

// Create assigns identity and timestamp, stores the notification, and pushes
// it in real time when it targets a specific user. The store write is
// synchronous and in-memory; the push is enqueue-and-return.
func (s *Service) Create(ctx context.Context, draft Draft) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    draft.UserID,
		Type:      draft.Type,
		Title:     draft.Title,
		Message:   draft.Message,
		Data:      draft.Data,
		Priority:  draft.Priority,
		CreatedAt: requestcontext.Now(ctx),
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}

	s.store.Insert(n)
	s.metrics.created()

	if n.UserID != "" && s.broadcaster != nil {
		s.broadcaster.BroadcastNotification(ws.NotificationEvent{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Timestamp: n.CreatedAt,
			UserID:    n.UserID,
		})
	}

	return n
}

// ListForUser returns the user's notifications newest-first.
func (s *Service) ListForUser(userID string, limit int) []Notification {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListForUser(userID, limit)
}

// MarkRead reports whether the notification exists; repeat calls keep
// returning true and leave it read.
func (s *Service) MarkRead(id string) bool {
	return s.store.MarkRead(id)
}

// MarkAllRead reports whether at least one notification transitioned from
// unread to read. The return value is deliberately not idempotent even
// though the resulting state is.
func (s *Service) MarkAllRead(userID string) bool {
	return s.store.MarkAllRead(userID)
}

// Delete removes the notification, reporting whether it existed.
func (s *Service) Delete(id string) bool {
	return s.store.Delete(id)
}
