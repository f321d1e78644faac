// Package jina configures the OpenAI-compatible embedding client for Jina AI.
package jina

import (
	"time"

	"school-chatbot-be/pkg/embedding"
)

const (
	DefaultBaseURL = "https://api.jina.ai/v1"
	DefaultModel   = "jina-embeddings-v2-base-en"
)

// NewProvider uses jina-embeddings-v2-base-en (768 dimensions) unless model is set.
func NewProvider(apiKey, baseURL, model string, timeout time.Duration) *embedding.OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return embedding.NewOpenAIProvider(apiKey, baseURL, model, timeout)
}
