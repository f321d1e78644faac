package rag

import (
	"math"
	"sort"

	"school-chatbot-be/pkg/store"
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Vectors of different length or
// with zero magnitude score 0 instead of NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank orders docs by descending similarity to query and keeps at most topK.
// Equal scores keep their original order. Documents without an embedding are skipped.
func Rank(query []float32, docs []store.Document, topK int) []store.ScoredDocument {
	if topK <= 0 || len(docs) == 0 {
		return []store.ScoredDocument{}
	}

	scored := make([]store.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		if len(d.Embedding) == 0 {
			continue
		}
		scored = append(scored, store.ScoredDocument{
			Document: d,
			Score:    CosineSimilarity(query, d.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
