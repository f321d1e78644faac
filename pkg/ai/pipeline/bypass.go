package pipeline

import (
	"context"
	"strings"

	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/llm"
)

// BypassResult contains the result of bypass execution
type BypassResult struct {
	Reply string
}

// BypassPipeline executes pure LLM without RAG.
// The persona prompt and the session history are sent, no website content.
type BypassPipeline struct {
	llmProvider  llm.LLMProvider
	systemPrompt string
	logger       logger.ILogger
}

func NewBypassPipeline(llmProvider llm.LLMProvider, systemPrompt string, log logger.ILogger) *BypassPipeline {
	return &BypassPipeline{
		llmProvider:  llmProvider,
		systemPrompt: systemPrompt,
		logger:       log,
	}
}

// Execute runs pure LLM with conversation history
func (p *BypassPipeline) Execute(ctx context.Context, query string, history []llm.Message) (*BypassResult, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	if p.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: constant.ChatMessageRoleSystem, Content: p.systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: query})

	p.logger.Debug("BYPASS", "Executing direct answer", map[string]interface{}{
		"messages": len(messages),
	})

	response, err := p.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &BypassResult{
		Reply: strings.TrimSpace(response),
	}, nil
}
