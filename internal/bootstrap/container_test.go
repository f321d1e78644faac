package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"school-chatbot-be/internal/config"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
		wantErr  bool
	}{
		{"openai", "*embedding.OpenAIProvider", false},
		{"jina", "*embedding.OpenAIProvider", false},
		{"ollama", "*embedding.OllamaProvider", false},
		{"word2vec", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewEmbeddingProvider(config.AIConfig{EmbeddingProvider: tt.provider})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, fmt.Sprintf("%T", p))
		})
	}
}

func TestNewSearchProviderDisabledWithoutKey(t *testing.T) {
	cfg := &config.Config{}
	log := logger.NewNopLogger()

	assert.Nil(t, newSearchProvider("brave", "", cfg, log))
	assert.Nil(t, newSearchProvider("duckduckgo", "key", cfg, log))
	assert.NotNil(t, newSearchProvider("bing", "key", cfg, log))
}

func TestNewSessionRepository(t *testing.T) {
	_, err := newSessionRepository(config.SessionConfig{Backend: "memory"})
	assert.NoError(t, err)

	_, err = newSessionRepository(config.SessionConfig{Backend: "sqlite"})
	assert.Error(t, err)
}

func newTestContainer(t *testing.T) (*Container, string) {
	t.Helper()
	dir := t.TempDir()
	chatLog := filepath.Join(dir, "chat_logs.txt")
	cfg := &config.Config{
		App: config.AppConfig{
			LogFilePath:      filepath.Join(dir, "app.log"),
			ChatLogPath:      chatLog,
			UsageTrackerPath: filepath.Join(dir, "usage.json"),
			DataPath:         filepath.Join(dir, "data"),
		},
		Ai:      config.AIConfig{LLMProvider: "openai", EmbeddingProvider: "openai", TopK: 3},
		Session: config.SessionConfig{Backend: "memory", HistoryLimit: 10},
		School:  config.SchoolConfig{Name: "Test College"},
	}
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, chatLog
}

func TestTranscriptConsumerOutlivesRequestContext(t *testing.T) {
	c, chatLog := newTestContainer(t)

	stop, err := c.StartTranscriptConsumer()
	require.NoError(t, err)
	defer stop()

	// the shutdown signal has already fired when the last request finishes
	signalCtx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, err := json.Marshal(logger.TranscriptEntry{
		SessionId:      "late",
		UserQuery:      "When is sports day?",
		AssistantReply: "In March.",
		Stage:          "rag",
	})
	require.NoError(t, err)
	publisher := service.NewPublisherService(c.pubSub, service.TranscriptTopic)
	require.NoError(t, publisher.Publish(context.WithoutCancel(signalCtx), payload))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(chatLog)
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(chatLog)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "late", got["sessionId"])
	assert.Equal(t, "In March.", got["assistantReply"])
}
