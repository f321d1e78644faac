package memory

import (
	"context"
	"time"

	"school-chatbot-be/internal/repository/contract"
	"school-chatbot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionRepository = &SessionRepository{}

// NewSessionRepository evicts sessions idle for longer than idleTimeout.
// The janitor runs every idleTimeout/6 (10 minutes for the 1h default).
func NewSessionRepository(idleTimeout time.Duration) *SessionRepository {
	if idleTimeout <= 0 {
		idleTimeout = time.Hour
	}
	c := cache.New(idleTimeout, idleTimeout/6)
	return &SessionRepository{
		cache: c,
	}
}

// Save stores a copy so callers can keep mutating their value. Saving resets the idle timer.
func (r *SessionRepository) Save(_ context.Context, session *store.Session) error {
	r.cache.Set(session.ID, clone(session), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*store.Session, error) {
	if x, found := r.cache.Get(sessionID); found {
		return clone(x.(*store.Session)), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func clone(s *store.Session) *store.Session {
	c := *s
	c.History = append([]store.Turn(nil), s.History...)
	return &c
}
