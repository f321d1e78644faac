// Package intent answers greetings, fixed facts and vague single-term questions
// without touching the retrieval pipeline.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/rules"
)

type Kind string

const (
	KindNone          Kind = ""
	KindGreeting      Kind = "greeting"
	KindQuickFact     Kind = "quick_fact"
	KindClarification Kind = "clarification"
	KindPersonalFact  Kind = "personal_fact"
)

// Result is the outcome of Match. When Reply is empty the request continues to
// the answer pipeline with Query, which may differ from the user's text after
// a clarification was answered.
type Result struct {
	Kind  Kind
	Reply string
	Query string
}

func (r *Result) Handled() bool {
	return r.Reply != ""
}

// PendingStore remembers which clarification question a session was asked.
type PendingStore interface {
	PendingClarification(ctx context.Context, sessionID string) (string, error)
	SetPendingClarification(ctx context.Context, sessionID, key string) error
	ClearPendingClarification(ctx context.Context, sessionID string) error
}

type synonym struct {
	pattern     *regexp.Regexp
	replacement string
}

type Matcher struct {
	rules      *rules.Rules
	pending    PendingStore
	llm        llm.LLMProvider // nil disables smoothing
	schoolName string
	logger     logger.ILogger

	synonyms []synonym
	triggers map[string][]*regexp.Regexp
}

func NewMatcher(r *rules.Rules, pending PendingStore, smoother llm.LLMProvider, schoolName string, log logger.ILogger) *Matcher {
	m := &Matcher{
		rules:      r,
		pending:    pending,
		llm:        smoother,
		schoolName: schoolName,
		logger:     log,
		triggers:   make(map[string][]*regexp.Regexp),
	}

	// longer phrases first so "school based assessment" style keys win over their parts
	keys := make([]string, 0, len(r.Synonyms))
	for k := range r.Synonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		m.synonyms = append(m.synonyms, synonym{
			pattern:     wordPattern(k),
			replacement: r.Synonyms[k],
		})
	}

	for _, f := range r.QuickFacts {
		for _, t := range f.Triggers {
			m.triggers[f.Key] = append(m.triggers[f.Key], wordPattern(t))
		}
	}
	return m
}

func wordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Normalize lower-cases the query, turns punctuation into spaces, collapses
// whitespace and expands synonyms on word boundaries.
func (m *Matcher) Normalize(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\'' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, query)
	normalized := strings.Join(strings.Fields(cleaned), " ")

	for _, s := range m.synonyms {
		normalized = s.pattern.ReplaceAllLiteralString(normalized, s.replacement)
	}
	return normalized
}

// Match runs the shortcut tables in order: greetings, quick facts,
// clarifications, personal facts. The first hit wins.
func (m *Matcher) Match(ctx context.Context, sessionID, query string) (*Result, error) {
	normalized := m.Normalize(query)
	passthrough := &Result{Kind: KindNone, Query: query}
	if normalized == "" {
		return passthrough, nil
	}

	for _, g := range m.rules.Greetings {
		for _, k := range g.Keys {
			if normalized == k {
				return &Result{Kind: KindGreeting, Reply: g.Reply, Query: query}, nil
			}
		}
	}

	for _, f := range m.rules.QuickFacts {
		if normalized == f.Key {
			return &Result{Kind: KindQuickFact, Reply: f.Reply, Query: query}, nil
		}
		for _, p := range m.triggers[f.Key] {
			if p.MatchString(normalized) {
				return &Result{Kind: KindQuickFact, Reply: f.Reply, Query: query}, nil
			}
		}
	}

	res, err := m.matchClarification(ctx, sessionID, query, normalized)
	if err != nil || res != nil {
		return res, err
	}

	for _, f := range m.rules.PersonalFacts {
		if !rules.ContainsAny(normalized, f.Keywords) {
			continue
		}
		return &Result{Kind: KindPersonalFact, Reply: m.personalFact(ctx, query, f), Query: query}, nil
	}

	return passthrough, nil
}

func (m *Matcher) matchClarification(ctx context.Context, sessionID, query, normalized string) (*Result, error) {
	for _, c := range m.rules.Clarifications {
		if normalized != c.Key {
			continue
		}
		if err := m.pending.SetPendingClarification(ctx, sessionID, c.Key); err != nil {
			return nil, fmt.Errorf("record clarification: %w", err)
		}
		return &Result{Kind: KindClarification, Reply: c.Prompt, Query: query}, nil
	}

	pendingKey, err := m.pending.PendingClarification(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read clarification state: %w", err)
	}
	if pendingKey == "" {
		return nil, nil
	}

	for _, c := range m.rules.Clarifications {
		if c.Key != pendingKey {
			continue
		}
		if !rules.ContainsAny(normalized, c.Accepted) {
			// still ambiguous, ask again and stay pending
			return &Result{Kind: KindClarification, Reply: c.Prompt, Query: query}, nil
		}
		if err := m.pending.ClearPendingClarification(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("clear clarification: %w", err)
		}
		rewritten := query
		if !strings.Contains(normalized, c.Key) {
			rewritten = strings.TrimSpace(query) + " " + c.Key
		}
		m.logger.Debug("INTENT", "Clarification answered", map[string]interface{}{
			"session_id": sessionID,
			"key":        c.Key,
			"query":      rewritten,
		})
		return &Result{Kind: KindNone, Query: rewritten}, nil
	}

	// pending key no longer in the rules
	if err := m.pending.ClearPendingClarification(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear clarification: %w", err)
	}
	return nil, nil
}

func (m *Matcher) personalFact(ctx context.Context, query string, f rules.PersonalFact) string {
	sentence := fmt.Sprintf("The %s of %s is %s.", f.Subject, m.schoolName, f.Value)
	if m.llm == nil {
		return sentence
	}

	prompt := fmt.Sprintf(constant.PersonalFactSmoothingPrompt, query, sentence)
	smoothed, err := m.llm.Generate(ctx, prompt, llm.WithTemperature(0.2), llm.WithMaxTokens(120))
	if err != nil || strings.TrimSpace(smoothed) == "" {
		m.logger.Warn("INTENT", "Personal fact smoothing failed, using plain sentence", map[string]interface{}{
			"error": err,
		})
		return sentence
	}
	return strings.TrimSpace(smoothed)
}
