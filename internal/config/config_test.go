package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := Load()

	assert.Equal(t, "", cfg.App.Port) // explicitly set, even if empty
	assert.Equal(t, 3, cfg.Ai.TopK)
	assert.Equal(t, 10, cfg.Session.HistoryLimit)
	assert.Equal(t, time.Hour, cfg.Session.IdleTimeout)
	assert.Equal(t, 20*time.Second, cfg.Ai.RequestTimeout)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LLM_PROVIDER", "GROQ")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("REQUEST_TIMEOUT", "15")
	t.Setenv("SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("SMOOTH_PERSONAL_FACTS", "false")
	t.Setenv("TOP_K", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "groq", cfg.Ai.LLMProvider)
	assert.Equal(t, 20, cfg.Session.HistoryLimit)
	assert.Equal(t, 15*time.Second, cfg.Ai.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.False(t, cfg.Ai.SmoothPersonalFacts)
	assert.Equal(t, 3, cfg.Ai.TopK)
}
