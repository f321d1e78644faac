package factory

import (
	"fmt"
	"time"

	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/llm/ollama"
	"school-chatbot-be/pkg/llm/openai"
)

// NewLLMProvider builds the chat backend named by providerType.
// An empty baseURL selects the vendor default.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewProvider(apiKey, baseURL, modelName, timeout), nil
	case "groq":
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
		}
		if modelName == "" {
			modelName = "llama-3.3-70b-versatile"
		}
		return openai.NewProvider(apiKey, baseURL, modelName, timeout), nil
	case "huggingface":
		if baseURL == "" {
			baseURL = openai.HuggingFaceBaseURL
		}
		return openai.NewProvider(apiKey, baseURL, modelName, timeout), nil
	case "ollama":
		return ollama.NewProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
