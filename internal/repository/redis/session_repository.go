package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"school-chatbot-be/internal/repository/contract"
	"school-chatbot-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "chatbot:session:"

// SessionRepository keeps sessions in Redis so several server instances can
// share conversations. Each Save refreshes the key TTL.
type SessionRepository struct {
	rdb         *goredis.Client
	idleTimeout time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(rdb *goredis.Client, idleTimeout time.Duration) *SessionRepository {
	if idleTimeout <= 0 {
		idleTimeout = time.Hour
	}
	return &SessionRepository{rdb: rdb, idleTimeout: idleTimeout}
}

// NewClient parses url (redis://...) and falls back to treating it as host:port.
func NewClient(url string) *goredis.Client {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		opt = &goredis.Options{Addr: url}
	}
	return goredis.NewClient(opt)
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+session.ID, data, r.idleTimeout).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s store.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, keyPrefix+sessionID).Err()
}
