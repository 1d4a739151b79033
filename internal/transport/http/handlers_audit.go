package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopgenie/internal/audit"
	"shopgenie/internal/rbac"
)

// AuditHandler exposes the read-only audit trail. All routes require the
// system:view permission.
type AuditHandler struct {
	recorder *audit.Recorder
	resolver *rbac.Resolver
	logger   *slog.Logger
}

func NewAuditHandler(recorder *audit.Recorder, resolver *rbac.Resolver, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{recorder: recorder, resolver: resolver, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(rbac.RequirePermission(h.resolver, "system:view", h.logger))
		g.Get("/audit/recent", h.recent)
		g.Get("/audit/user/{userID}", h.byUser)
		g.Get("/audit/resource/{resource}", h.byResource)
	})
}

func (h *AuditHandler) recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.Recent(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditHandler) byUser(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.ByUser(r.Context(), chi.URLParam(r, "userID"), queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditHandler) byResource(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	resourceID := r.URL.Query().Get("id")
	entries, err := h.recorder.ByResource(r.Context(), resource, resourceID, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
