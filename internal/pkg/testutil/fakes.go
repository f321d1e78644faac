// Package testutil holds call-counting fakes of the external AI and search providers.
package testutil

import (
	"context"
	"errors"
	"sync"

	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/search"
)

var ErrProviderDown = errors.New("provider unavailable")

// FakeLLM answers with Reply and records every conversation it receives.
type FakeLLM struct {
	Reply func(call int, messages []llm.Message) (string, error)

	mu    sync.Mutex
	calls [][]llm.Message
}

// StaticLLM always answers with reply.
func StaticLLM(reply string) *FakeLLM {
	return &FakeLLM{Reply: func(int, []llm.Message) (string, error) { return reply, nil }}
}

// SequenceLLM answers with replies in order; the last one repeats.
func SequenceLLM(replies ...string) *FakeLLM {
	return &FakeLLM{Reply: func(call int, _ []llm.Message) (string, error) {
		if call >= len(replies) {
			return replies[len(replies)-1], nil
		}
		return replies[call], nil
	}}
}

// FailingLLM always errors.
func FailingLLM() *FakeLLM {
	return &FakeLLM{Reply: func(int, []llm.Message) (string, error) { return "", ErrProviderDown }}
}

func (f *FakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, append([]llm.Message(nil), history...))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Reply(call, history)
}

func (f *FakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *FakeLLM) Call(i int) []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// FakeEmbedder returns Vectors[text], or Default when the text is unknown.
// Texts listed in Fail produce an error.
type FakeEmbedder struct {
	Vectors map[string][]float32
	Default []float32
	Fail    map[string]bool
	Err     error

	mu    sync.Mutex
	calls int
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Fail[text] {
		return nil, ErrProviderDown
	}
	if v, ok := f.Vectors[text]; ok {
		return v, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return nil, ErrProviderDown
}

func (f *FakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeSearch returns Results or Err.
type FakeSearch struct {
	ProviderName string
	Results      []search.Result
	Err          error

	mu    sync.Mutex
	calls int
}

func (f *FakeSearch) Name() string {
	if f.ProviderName == "" {
		return "fake"
	}
	return f.ProviderName
}

func (f *FakeSearch) Search(ctx context.Context, query string, count int) ([]search.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if count < len(f.Results) {
		return f.Results[:count], nil
	}
	return f.Results, nil
}

func (f *FakeSearch) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
