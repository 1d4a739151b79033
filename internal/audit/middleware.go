package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"shopgenie/pkg/requestcontext"
)

// Snapshot lets handlers attach before/after values and a resource ID to the
// audit entry the middleware will record once the response is written.
type Snapshot struct {
	mu         sync.Mutex
	resourceID string
	oldValues  json.RawMessage
	newValues  json.RawMessage
}

type snapshotKey struct{}

func snapshotFromContext(ctx context.Context) *Snapshot {
	snap, _ := ctx.Value(snapshotKey{}).(*Snapshot)
	return snap
}

// SetResourceID overrides the resource ID recorded for this request.
func SetResourceID(ctx context.Context, id string) {
	if snap := snapshotFromContext(ctx); snap != nil {
		snap.mu.Lock()
		snap.resourceID = id
		snap.mu.Unlock()
	}
}

// SetOldValues attaches the pre-mutation state. Marshal failures leave the
// snapshot empty; the entry is still recorded.
func SetOldValues(ctx context.Context, v any) {
	if snap := snapshotFromContext(ctx); snap != nil {
		if raw, err := json.Marshal(v); err == nil {
			snap.mu.Lock()
			snap.oldValues = raw
			snap.mu.Unlock()
		}
	}
}

// SetNewValues attaches the post-mutation state.
func SetNewValues(ctx context.Context, v any) {
	if snap := snapshotFromContext(ctx); snap != nil {
		if raw, err := json.Marshal(v); err == nil {
			snap.mu.Lock()
			snap.newValues = raw
			snap.mu.Unlock()
		}
	}
}

// Capture records mutating requests against the named resource after their
// response is written. GET requests are skipped; use CaptureAction to force
// recording a read. Only successful responses (< 400) with an authenticated
// actor produce an entry, and recording never delays the response.
func Capture(recorder *Recorder, resource string) func(http.Handler) http.Handler {
	return capture(recorder, resource, "")
}

// CaptureAction is Capture with an explicit action, recording regardless of
// HTTP method.
func CaptureAction(recorder *Recorder, resource string, action Action) func(http.Handler) http.Handler {
	return capture(recorder, resource, action)
}

func capture(recorder *Recorder, resource string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && action == "" {
				next.ServeHTTP(w, r)
				return
			}

			snap := &Snapshot{}
			ctx := context.WithValue(r.Context(), snapshotKey{}, snap)
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r.WithContext(ctx))

			userID := requestcontext.UserID(ctx)
			if userID == "" || sw.status >= 400 {
				return
			}

			act := action
			if act == "" {
				act = ActionForMethod(r.Method)
			}

			snap.mu.Lock()
			resourceID := snap.resourceID
			oldValues := snap.oldValues
			newValues := snap.newValues
			snap.mu.Unlock()
			if resourceID == "" {
				resourceID = chi.URLParam(r, "id")
			}

			recorder.Record(ctx, Entry{
				UserID:     userID,
				Action:     act,
				Resource:   resource,
				ResourceID: resourceID,
				OldValues:  oldValues,
				NewValues:  newValues,
				IPAddress:  requestcontext.ClientIP(ctx),
				UserAgent:  requestcontext.UserAgent(ctx),
				Metadata: map[string]any{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     sw.status,
					"request_id": requestcontext.RequestID(ctx),
				},
			})
		})
	}
}

// statusWriter remembers the response status so the middleware can skip
// failed requests.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
