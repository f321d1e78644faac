package memory

import (
	"context"
	"testing"
	"time"

	"school-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	got, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := &store.Session{ID: "s1", History: []store.Turn{{Role: store.RoleUser, Content: "hi"}}}
	require.NoError(t, repo.Save(ctx, s))

	// mutating the caller's value must not leak into the stored copy
	s.History[0].Content = "changed"
	s.History = append(s.History, store.Turn{Role: store.RoleAssistant, Content: "x"})

	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "hi", got.History[0].Content)

	require.NoError(t, repo.Delete(ctx, "s1"))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepositoryIdleExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(20 * time.Millisecond)

	require.NoError(t, repo.Save(ctx, &store.Session{ID: "idle"}))
	assert.Eventually(t, func() bool {
		got, _ := repo.Get(ctx, "idle")
		return got == nil
	}, time.Second, 10*time.Millisecond)
}
