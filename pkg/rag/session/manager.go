package session

import (
	"context"
	"sync"
	"time"

	"school-chatbot-be/internal/repository/contract"
	"school-chatbot-be/pkg/store"

	"github.com/google/uuid"
)

const DefaultHistoryLimit = 10

// Manager owns the per-session conversation state on top of a SessionRepository.
// Every read-modify-write runs under one mutex, so concurrent requests for the
// same session in this process do not lose turns.
type Manager struct {
	repo         contract.SessionRepository
	historyLimit int
	now          func() time.Time

	mu sync.Mutex
}

func NewManager(repo contract.SessionRepository, historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Manager{
		repo:         repo,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

func (m *Manager) HistoryLimit() int {
	return m.historyLimit
}

// Append adds one turn and trims the history to the most recent historyLimit turns.
func (m *Manager) Append(ctx context.Context, sessionID, role, content string) error {
	return m.update(ctx, sessionID, func(s *store.Session) {
		s.History = append(s.History, store.Turn{Role: role, Content: content})
		s.History = trim(s.History, m.historyLimit)
	})
}

// Seed fills the history of a session that has none yet. Sessions that
// already have turns are left untouched.
func (m *Manager) Seed(ctx context.Context, sessionID string, turns []store.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	return m.update(ctx, sessionID, func(s *store.Session) {
		if len(s.History) > 0 {
			return
		}
		for _, t := range turns {
			if (t.Role != store.RoleUser && t.Role != store.RoleAssistant) || t.Content == "" {
				continue
			}
			s.History = append(s.History, t)
		}
		s.History = trim(s.History, m.historyLimit)
	})
}

// History returns a copy of the session turns, oldest first.
func (m *Manager) History(ctx context.Context, sessionID string) ([]store.Turn, error) {
	s, err := m.repo.Get(ctx, sessionID)
	if err != nil || s == nil {
		return []store.Turn{}, err
	}
	return append([]store.Turn{}, s.History...), nil
}

func (m *Manager) PendingClarification(ctx context.Context, sessionID string) (string, error) {
	s, err := m.repo.Get(ctx, sessionID)
	if err != nil || s == nil {
		return "", err
	}
	return s.PendingClarification, nil
}

func (m *Manager) SetPendingClarification(ctx context.Context, sessionID, key string) error {
	return m.update(ctx, sessionID, func(s *store.Session) {
		s.PendingClarification = key
	})
}

func (m *Manager) ClearPendingClarification(ctx context.Context, sessionID string) error {
	return m.SetPendingClarification(ctx, sessionID, "")
}

func (m *Manager) update(ctx context.Context, sessionID string, fn func(*store.Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s == nil {
		s = &store.Session{ID: sessionID}
	}
	fn(s)
	s.LastActivity = m.now()
	return m.repo.Save(ctx, s)
}

func trim(turns []store.Turn, limit int) []store.Turn {
	if len(turns) <= limit {
		return turns
	}
	return append([]store.Turn(nil), turns[len(turns)-limit:]...)
}
