package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopgenie/internal/notify"
	"shopgenie/internal/rbac"
	"shopgenie/pkg/requestcontext"
)

// NotificationsHandler exposes the per-user notification surface. Every
// route operates on the authenticated actor's own notifications.
type NotificationsHandler struct {
	notifications *notify.Service
	resolver      *rbac.Resolver
	logger        *slog.Logger
}

func NewNotificationsHandler(notifications *notify.Service, resolver *rbac.Resolver, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, resolver: resolver, logger: logger}
}

func (h *NotificationsHandler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(rbac.RequirePermission(h.resolver, "dashboard:view", h.logger))
		g.Get("/notifications", h.list)
		g.Patch("/notifications/{id}/read", h.markRead)
		g.Patch("/notifications/mark-all-read", h.markAllRead)
		g.Delete("/notifications/{id}", h.remove)
	})
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications := h.notifications.ListForUser(userID, limit)
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.notifications.MarkRead(id) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *NotificationsHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	updated := h.notifications.MarkAllRead(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"success": updated,
	})
}

func (h *NotificationsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.notifications.Delete(id) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
