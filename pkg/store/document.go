package store

// Document is a piece of school website content used for retrieval.
// Embedding is nil until the index has embedded it.
type Document struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
}

// ScoredDocument is a ranking result.
type ScoredDocument struct {
	Document
	Score float64 `json:"score"`
}
