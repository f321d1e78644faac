package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/rules"
	"school-chatbot-be/pkg/search"
	"school-chatbot-be/pkg/store"
)

type Stage string

const (
	StageRAG             Stage = "rag"
	StageDirect          Stage = "direct"
	StageSearchPrimary   Stage = "search_primary"
	StageSearchSecondary Stage = "search_secondary"
	StageFallback        Stage = "fallback"
)

var (
	ErrRejected      = errors.New("answer rejected")
	ErrQuotaExceeded = errors.New("search quota exceeded")
	ErrNotConfigured = errors.New("search provider not configured")
	errEmptyAnswer   = errors.New("empty answer")
)

// QuotaTracker guards the paid search providers.
type QuotaTracker interface {
	Allow(provider string) (bool, error)
	Increment(provider string) error
}

type Answer struct {
	Reply string
	Stage Stage
}

type Config struct {
	IrrelevantPhrases []string
	WeakPhrases       []string
	StepTimeout       time.Duration
	SearchResults     int
	Apology           string
}

// AnswerPipeline runs the fallback cascade: retrieval answer, direct answer,
// primary web search, secondary web search and finally a fixed apology.
type AnswerPipeline struct {
	rag       *RAGPipeline
	bypass    *BypassPipeline
	primary   search.Provider // may be nil
	secondary search.Provider // may be nil
	quota     QuotaTracker
	cfg       Config
	logger    logger.ILogger
}

func NewAnswerPipeline(
	rag *RAGPipeline,
	bypass *BypassPipeline,
	primary, secondary search.Provider,
	quota QuotaTracker,
	cfg Config,
	log logger.ILogger,
) *AnswerPipeline {
	if cfg.SearchResults <= 0 {
		cfg.SearchResults = search.DefaultResultCount
	}
	return &AnswerPipeline{
		rag:       rag,
		bypass:    bypass,
		primary:   primary,
		secondary: secondary,
		quota:     quota,
		cfg:       cfg,
		logger:    log,
	}
}

// Answer never surfaces provider errors. It only fails when ctx is done, which
// leaves no step able to run.
func (p *AnswerPipeline) Answer(ctx context.Context, query string, history []store.Turn) (*Answer, error) {
	steps := []struct {
		stage Stage
		run   func(context.Context) (string, error)
	}{
		{StageRAG, func(c context.Context) (string, error) { return p.ragStep(c, query) }},
		{StageDirect, func(c context.Context) (string, error) { return p.directStep(c, query, history) }},
		{StageSearchPrimary, func(c context.Context) (string, error) { return p.searchStep(c, p.primary, query) }},
		{StageSearchSecondary, func(c context.Context) (string, error) { return p.searchStep(c, p.secondary, query) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("answer cancelled before %s: %w", step.stage, err)
		}

		reply, err := p.withTimeout(ctx, step.run)
		if err == nil {
			p.logger.Info("PIPELINE", "Answer produced", map[string]interface{}{
				"stage": string(step.stage),
			})
			return &Answer{Reply: reply, Stage: step.stage}, nil
		}

		p.logger.Warn("PIPELINE", "Stage did not produce an answer", map[string]interface{}{
			"stage": string(step.stage),
			"error": err.Error(),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("answer cancelled before %s: %w", StageFallback, err)
	}
	return &Answer{Reply: p.cfg.Apology, Stage: StageFallback}, nil
}

func (p *AnswerPipeline) withTimeout(ctx context.Context, run func(context.Context) (string, error)) (string, error) {
	if p.cfg.StepTimeout <= 0 {
		return run(ctx)
	}
	stepCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
	defer cancel()
	return run(stepCtx)
}

func (p *AnswerPipeline) ragStep(ctx context.Context, query string) (string, error) {
	res, err := p.rag.Execute(ctx, query)
	if err != nil {
		return "", err
	}
	if res.Reply == "" {
		return "", errEmptyAnswer
	}
	if rules.ContainsAny(res.Reply, p.cfg.IrrelevantPhrases) {
		return "", fmt.Errorf("%w: irrelevant phrase in %q", ErrRejected, truncate(res.Reply, 80))
	}
	return res.Reply, nil
}

func (p *AnswerPipeline) directStep(ctx context.Context, query string, history []store.Turn) (string, error) {
	messages := make([]llm.Message, 0, len(history))
	for _, t := range history {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	res, err := p.bypass.Execute(ctx, query, messages)
	if err != nil {
		return "", err
	}
	if res.Reply == "" {
		return "", errEmptyAnswer
	}
	if rules.ContainsAny(res.Reply, p.cfg.WeakPhrases) {
		return "", fmt.Errorf("%w: weak phrase in %q", ErrRejected, truncate(res.Reply, 80))
	}
	return res.Reply, nil
}

func (p *AnswerPipeline) searchStep(ctx context.Context, provider search.Provider, query string) (string, error) {
	if provider == nil {
		return "", ErrNotConfigured
	}
	name := provider.Name()

	allowed, err := p.quota.Allow(name)
	if err != nil {
		return "", fmt.Errorf("check %s quota: %w", name, err)
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, name)
	}

	results, err := provider.Search(ctx, query, p.cfg.SearchResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", search.ErrNoResults
	}

	if err := p.quota.Increment(name); err != nil {
		p.logger.Error("PIPELINE", "Failed to record search usage", map[string]interface{}{
			"provider": name,
			"error":    err,
		})
	}
	return search.FormatResults(results), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
