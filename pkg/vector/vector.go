// Package vector provides cosine similarity scoring and top-K ranking over
// in-memory embedding vectors.
package vector

import "time"

// Embedding represents a stored embedding derived from a post.
type Embedding struct {
	// PostID is the id of the post this embedding was generated from.
	PostID string `json:"post_id" db:"post_id"`

	// Vector is the raw embedding exactly as returned by the embedding
	// service. No renormalization or dimension coercion is applied.
	Vector []float32 `json:"embedding" db:"embedding"`

	// ModelName records which model produced the vector.
	ModelName string `json:"model_name" db:"model_name"`

	// CreatedAt is when the embedding was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Candidate is a scoring input: a post id with its stored vector.
type Candidate struct {
	PostID string
	Vector []float32
}

// Match is a ranked search result.
type Match struct {
	PostID string  `json:"post_id"`
	Score  float64 `json:"score"`
}
