package rag

import (
	"math"
	"testing"

	"school-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRank(t *testing.T) {
	docs := []store.Document{
		{Title: "far", Content: "a", Embedding: []float32{0, 1}},
		{Title: "close", Content: "b", Embedding: []float32{1, 0.1}},
		{Title: "unembedded", Content: "c"},
		{Title: "tie-first", Content: "d", Embedding: []float32{1, 1}},
		{Title: "tie-second", Content: "e", Embedding: []float32{2, 2}},
		{Title: "exact", Content: "f", Embedding: []float32{3, 0}},
	}
	query := []float32{1, 0}

	t.Run("ordered and bounded", func(t *testing.T) {
		for k := 0; k <= len(docs)+1; k++ {
			got := Rank(query, docs, k)
			assert.LessOrEqual(t, len(got), k)
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
			}
		}
	})

	t.Run("top results", func(t *testing.T) {
		got := Rank(query, docs, 4)
		require.Len(t, got, 4)
		assert.Equal(t, "exact", got[0].Title)
		assert.Equal(t, "close", got[1].Title)
		assert.Equal(t, "tie-first", got[2].Title)
		assert.Equal(t, "tie-second", got[3].Title)
	})

	t.Run("skips documents without embeddings", func(t *testing.T) {
		got := Rank(query, docs, 10)
		assert.Len(t, got, 5)
		for _, d := range got {
			assert.NotEqual(t, "unembedded", d.Title)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Rank(query, nil, 3))
	})
}
