package contract

import (
	"context"

	"school-chatbot-be/pkg/store"
)

// SessionRepository stores chat sessions. Get returns (nil, nil) for unknown
// or expired sessions.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}
