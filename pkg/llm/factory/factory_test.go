package factory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"openai", "*openai.Provider"},
		{"groq", "*openai.Provider"},
		{"huggingface", "*openai.Provider"},
		{"ollama", "*ollama.Provider"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewLLMProvider(tt.provider, "test-model", "", "key", time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, fmt.Sprintf("%T", p))
		})
	}
}

func TestNewLLMProviderUnknown(t *testing.T) {
	_, err := NewLLMProvider("doesnotexist", "m", "", "", time.Second)
	require.Error(t, err)
	assert.Equal(t, "unsupported LLM provider: doesnotexist", err.Error())
}
