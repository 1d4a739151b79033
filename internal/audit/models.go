package audit

import (
	"encoding/json"
	"time"

	"github.com/mssola/useragent"
)

// Action classifies what a request did to a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// ActionForMethod derives the default action from the HTTP verb.
func ActionForMethod(method string) Action {
	switch method {
	case "POST":
		return ActionCreate
	case "PUT", "PATCH":
		return ActionUpdate
	case "DELETE":
		return ActionDelete
	case "GET":
		return ActionView
	default:
		return Action("unknown")
	}
}

// Entry is one immutable audit record: who did what to which resource, with
// optional before/after snapshots and requester metadata. Entries are never
// updated or deleted once written.
type Entry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     Action          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id,omitempty"`
	OldValues  json.RawMessage `json:"old_values,omitempty"`
	NewValues  json.RawMessage `json:"new_values,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	Device     string          `json:"device,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DeviceLabel renders a raw user-agent string as a short human-readable
// description for the audit trail.
func DeviceLabel(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
