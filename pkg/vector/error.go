package vector

import "errors"

var (
	// ErrNotFound is returned when a post has no stored embedding.
	ErrNotFound = errors.New("embedding not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the embedding service cannot be reached.
	ErrConnection = errors.New("embedding service connection failed")
)
