package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/embedding"
	"school-chatbot-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

const indexModule = "RAG-INDEX"

// Index keeps the embedded website documents in memory and answers
// nearest-neighbour queries with a linear scan.
type Index struct {
	embedder    embedding.EmbeddingProvider
	logger      logger.ILogger
	concurrency int
	timeout     time.Duration

	mu   sync.RWMutex
	docs []store.Document
}

func NewIndex(embedder embedding.EmbeddingProvider, log logger.ILogger, concurrency int, timeout time.Duration) *Index {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Index{
		embedder:    embedder,
		logger:      log,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ErrNothingEmbedded is returned by Build when every document failed. The
// previous content keeps serving.
var ErrNothingEmbedded = errors.New("no document could be embedded")

// Build embeds every document and replaces the index content with the ones
// that succeeded. It returns how many documents were embedded.
func (ix *Index) Build(ctx context.Context, docs []store.Document) (int, error) {
	embedded := make([]store.Document, len(docs))
	ok := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for i := range docs {
		i := i
		g.Go(func() error {
			callCtx, cancel := ix.callContext(gctx)
			defer cancel()

			vec, err := ix.embedder.Embed(callCtx, docs[i].Content)
			if err != nil {
				// one bad document must not stop the others
				ix.logger.Warn(indexModule, "Document embedding failed, excluding from ranking", map[string]interface{}{
					"title": docs[i].Title,
					"error": err.Error(),
				})
				return nil
			}
			d := docs[i]
			d.Embedding = vec
			embedded[i] = d
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("index build cancelled: %w", err)
	}

	kept := make([]store.Document, 0, len(docs))
	for i := range embedded {
		if ok[i] {
			kept = append(kept, embedded[i])
		}
	}

	if len(docs) > 0 && len(kept) == 0 {
		return 0, ErrNothingEmbedded
	}

	ix.Replace(kept)
	ix.logger.Info(indexModule, "Index built", map[string]interface{}{
		"documents": len(docs),
		"embedded":  len(kept),
	})
	return len(kept), nil
}

// Replace swaps the indexed documents. Documents are expected to carry embeddings.
func (ix *Index) Replace(docs []store.Document) {
	ix.mu.Lock()
	ix.docs = docs
	ix.mu.Unlock()
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search embeds the query and returns the topK closest documents.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]store.ScoredDocument, error) {
	ix.mu.RLock()
	docs := ix.docs
	ix.mu.RUnlock()

	if len(docs) == 0 {
		return nil, fmt.Errorf("index is empty")
	}

	callCtx, cancel := ix.callContext(ctx)
	defer cancel()

	vec, err := ix.embedder.Embed(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return Rank(vec, docs, topK), nil
}

func (ix *Index) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ix.timeout > 0 {
		return context.WithTimeout(ctx, ix.timeout)
	}
	return context.WithCancel(ctx)
}
