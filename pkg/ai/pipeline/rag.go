package pipeline

import (
	"context"
	"fmt"
	"strings"

	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/store"
)

// Retriever returns the documents closest to query, best first.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]store.ScoredDocument, error)
}

// RAGResult contains the result of RAG execution
type RAGResult struct {
	Reply   string
	Sources []string
}

// RAGPipeline answers from the retrieved website content only.
type RAGPipeline struct {
	retriever   Retriever
	llmProvider llm.LLMProvider
	topK        int
	schoolName  string
	logger      logger.ILogger
}

func NewRAGPipeline(retriever Retriever, llmProvider llm.LLMProvider, topK int, schoolName string, log logger.ILogger) *RAGPipeline {
	if topK <= 0 {
		topK = 3
	}
	return &RAGPipeline{
		retriever:   retriever,
		llmProvider: llmProvider,
		topK:        topK,
		schoolName:  schoolName,
		logger:      log,
	}
}

func (p *RAGPipeline) Execute(ctx context.Context, query string) (*RAGResult, error) {
	docs, err := p.retriever.Search(ctx, query, p.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	contents := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.Content)
		sources = append(sources, d.Title)
	}

	p.logger.Debug("RAG", "Context assembled", map[string]interface{}{
		"documents": sources,
	})

	messages := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: fmt.Sprintf(constant.RAGSystemPrompt, p.schoolName)},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf(constant.RAGUserPrompt, strings.Join(contents, constant.RAGContextSeparator), query)},
	}

	reply, err := p.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}

	return &RAGResult{
		Reply:   strings.TrimSpace(reply),
		Sources: sources,
	}, nil
}
