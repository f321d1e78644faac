package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single message in a session history.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session represents the conversation state of one widget visitor.
type Session struct {
	ID      string `json:"id"`
	History []Turn `json:"history"`

	// Key of the clarification question already asked and not yet answered.
	PendingClarification string `json:"pending_clarification,omitempty"`

	LastActivity time.Time `json:"last_activity"`
}
