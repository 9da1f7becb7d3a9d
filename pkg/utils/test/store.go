package testutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/vector"
)

// MockStore wraps a real Store and injects failures on demand.
type MockStore struct {
	storage.Store

	// FailInsertPosts causes InsertPosts to fail.
	FailInsertPosts bool

	// FailInsertEmbeddingFor causes InsertEmbedding to fail for one post ID.
	FailInsertEmbeddingFor string
}

func NewMockStore(inner storage.Store) *MockStore {
	return &MockStore{Store: inner}
}

func (m *MockStore) InsertPosts(ctx context.Context, posts []reddit.Post) (int, error) {
	if m.FailInsertPosts {
		return 0, fmt.Errorf("mock insert posts failure")
	}
	return m.Store.InsertPosts(ctx, posts)
}

func (m *MockStore) InsertEmbedding(ctx context.Context, embedding vector.Embedding) error {
	if m.FailInsertEmbeddingFor != "" && embedding.PostID == m.FailInsertEmbeddingFor {
		return fmt.Errorf("mock insert embedding failure for: %s", embedding.PostID)
	}
	return m.Store.InsertEmbedding(ctx, embedding)
}
