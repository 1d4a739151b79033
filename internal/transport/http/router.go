package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopgenie/internal/audit"
	"shopgenie/internal/notify"
	"shopgenie/internal/rbac"
	"shopgenie/internal/ws"
	authmw "shopgenie/pkg/platform/middleware/auth"
	"shopgenie/pkg/platform/middleware/metadata"
	"shopgenie/pkg/platform/middleware/requestid"
	"shopgenie/pkg/platform/middleware/requesttime"
)

// Deps collects everything the router wires together. main owns construction;
// tests swap in whatever subset they exercise.
type Deps struct {
	Logger        *slog.Logger
	Tokens        authmw.TokenValidator
	Resolver      *rbac.Resolver
	Notifications *notify.Service
	Recorder      *audit.Recorder
	Registry      *ws.Registry
	WSHandler     http.Handler

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewRouter wires the public surface: the websocket endpoint, the
// authenticated API, and the operational endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if deps.RateLimitPerSecond > 0 {
		r.Use(RateLimit(deps.RateLimitPerSecond, deps.RateLimitBurst))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The websocket endpoint authenticates itself from the token query
	// parameter or Authorization header; it does not use the API middleware.
	r.Method(http.MethodGet, "/ws", deps.WSHandler)

	r.Route("/api", func(api chi.Router) {
		api.Use(authmw.RequireAuth(deps.Tokens, deps.Logger))

		NewNotificationsHandler(deps.Notifications, deps.Resolver, deps.Logger).Register(api)
		NewAuditHandler(deps.Recorder, deps.Resolver, deps.Logger).Register(api)
		NewSystemHandler(deps.Notifications, deps.Registry, deps.Recorder, deps.Logger).Register(api)
	})

	return r
}
