// Package embeddings
package embeddings

import (
	"context"
	"time"
)

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Model describes an embedding model available on the service.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ModelManager manages the lifecycle of embedding models on the service.
type ModelManager interface {
	// ListModels returns the models currently available on the service.
	ListModels(ctx context.Context) ([]Model, error)

	// EnsureModel checks that the named model is available, pulling it when
	// absent. Returns true when a pull was performed.
	EnsureModel(ctx context.Context, name string) (bool, error)
}
