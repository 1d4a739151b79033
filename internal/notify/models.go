package notify

import "time"

// Priority orders how prominently a notification is surfaced.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is a stored, per-user (or global) message. The read flag only
// ever moves false -> true.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"` // empty targets all users
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	Priority  Priority       `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
}

// Draft is a notification before the service assigns identity and timestamp.
// Template helpers produce Drafts; so do domain event producers.
type Draft struct {
	UserID   string
	Type     string
	Title    string
	Message  string
	Data     map[string]any
	Priority Priority
}
