package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit entries from the inbox and persists them. A failed
// write is logged and counted, never surfaced: by the time the worker sees
// an entry, the request that produced it has already been answered.
type Worker struct {
	store   Store
	inbox   <-chan Entry
	logger  *slog.Logger
	metrics *Metrics
}

func NewWorker(store Store, inbox <-chan Entry, logger *slog.Logger, metrics *Metrics) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger, metrics: metrics}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			if err := w.store.Append(ctx, entry); err != nil {
				w.metrics.writeFailed()
				w.logger.ErrorContext(ctx, "audit write failed",
					"error", err,
					"entry_id", entry.ID,
					"resource", entry.Resource,
				)
			}
		}
	}
}
