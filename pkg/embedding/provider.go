package embedding

import (
	"context"
	"errors"
)

// ErrMissingVector is returned when a provider response carries no embedding.
var ErrMissingVector = errors.New("embedding response has no vector")

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
