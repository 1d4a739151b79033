package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"shopgenie/pkg/requestcontext"
)

// Default page sizes for the query surface.
const (
	DefaultQueryLimit  = 50
	DefaultRecentLimit = 100
)

// Recorder accepts audit entries from the request path and hands them to the
// background worker through a bounded queue. Recording never blocks: when
// the queue is full the entry is dropped and counted, because the audit
// trail is best-effort by contract, never transactional with the mutation it
// describes.
type Recorder struct {
	store   Store
	inbox   chan<- Entry
	logger  *slog.Logger
	metrics *Metrics
}

func NewRecorder(store Store, inbox chan<- Entry, logger *slog.Logger, metrics *Metrics) *Recorder {
	return &Recorder{store: store, inbox: inbox, logger: logger, metrics: metrics}
}

// Record assigns identity and timestamp, enriches requester metadata, and
// enqueues the entry. The returned Entry reflects what was offered to the
// queue; persistence happens asynchronously and may silently fail.
func (r *Recorder) Record(ctx context.Context, entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = requestcontext.Now(ctx)
	}
	if entry.Device == "" && entry.UserAgent != "" {
		entry.Device = DeviceLabel(entry.UserAgent)
	}

	select {
	case r.inbox <- entry:
		r.metrics.recorded()
	default:
		r.metrics.dropped()
		r.logger.WarnContext(ctx, "audit queue full, entry dropped",
			"action", entry.Action,
			"resource", entry.Resource,
			"user_id", entry.UserID,
		)
	}
	return entry
}

// ByUser returns the user's entries, newest-first.
func (r *Recorder) ByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return r.store.ByUser(ctx, userID, limit)
}

// ByResource returns entries touching a resource, optionally narrowed to one
// resource ID, newest-first.
func (r *Recorder) ByResource(ctx context.Context, resource, resourceID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return r.store.ByResource(ctx, resource, resourceID, limit)
}

// Recent returns the latest entries across all users, newest-first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return r.store.Recent(ctx, limit)
}
