package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopgenie/internal/audit"
	"shopgenie/internal/notify"
	"shopgenie/internal/rbac"
	"shopgenie/internal/ws"
	"shopgenie/pkg/requestcontext"
)

// SystemHandler carries the admin-only system surface: realtime test
// producers and registry introspection.
type SystemHandler struct {
	notifications *notify.Service
	registry      *ws.Registry
	recorder      *audit.Recorder
	logger        *slog.Logger
}

func NewSystemHandler(notifications *notify.Service, registry *ws.Registry, recorder *audit.Recorder, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		notifications: notifications,
		registry:      registry,
		recorder:      recorder,
		logger:        logger,
	}
}

func (h *SystemHandler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(rbac.RequireRole(h.logger, rbac.RoleAdmin, rbac.RoleSuperadmin))
		g.With(audit.CaptureAction(h.recorder, "notifications", audit.ActionCreate)).
			Post("/system/test-notification", h.testNotification)
		g.Post("/system/broadcast-alert", h.broadcastAlert)
		g.Get("/system/status", h.status)
	})
}

func (h *SystemHandler) testNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		Type     string `json:"type"`
		Title    string `json:"title"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type == "" {
		req.Type = "test"
	}
	if req.Title == "" {
		req.Title = "Test Notification"
	}
	if req.Message == "" {
		req.Message = "This is a test notification from the system."
	}
	userID := req.UserID
	if userID == "" {
		userID = requestcontext.UserID(r.Context())
	}

	notification := h.notifications.Create(r.Context(), notify.Draft{
		UserID:   userID,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Data:     map[string]any{"test": true},
		Priority: notify.Priority(req.Priority),
	})
	audit.SetResourceID(r.Context(), notification.ID)
	audit.SetNewValues(r.Context(), notification)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Test notification sent",
		"notification": notification,
	})
}

func (h *SystemHandler) broadcastAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Role    string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		req.Title = "System Alert"
	}
	if req.Message == "" {
		req.Message = "This is a system-wide alert."
	}

	// Exclude the actor so the alert is not echoed back to its sender.
	actor := requestcontext.UserID(r.Context())
	env := ws.Envelope{Type: ws.TypeSystemAlert, Data: map[string]any{
		"title":     req.Title,
		"message":   req.Message,
		"timestamp": time.Now(),
	}}
	if req.Role == "" || req.Role == "all" {
		h.registry.SendToAll(env, actor)
	} else {
		h.registry.SendToRole(req.Role, env, actor)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert broadcast successfully"})
}

func (h *SystemHandler) status(w http.ResponseWriter, r *http.Request) {
	actor := requestcontext.UserID(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"connected_users":  h.registry.Size(),
		"your_connections": h.registry.Connections(actor),
	})
}
