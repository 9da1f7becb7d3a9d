// Package storage
package storage

import (
	"context"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/vector"
)

// PostEmbedding pairs a post with one of its stored embeddings.
type PostEmbedding struct {
	Post      reddit.Post
	Embedding vector.Embedding
}

// Store defines the interface for persisting and retrieving collected posts,
// their embeddings, and their comments in a storage backend.
type Store interface {
	// InsertPosts upserts posts by id. Re-inserting an existing id replaces
	// the stored row (last write wins). Returns the number of posts written.
	InsertPosts(ctx context.Context, posts []reddit.Post) (int, error)

	// GetPost retrieves a post by its id.
	GetPost(ctx context.Context, id string) (*reddit.Post, error)

	// RecentPosts returns up to limit posts, newest first, optionally scoped
	// to a subreddit.
	RecentPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)

	// InsertEmbedding appends an embedding row. Embeddings are never
	// replaced: a post may accumulate rows across models and reruns.
	InsertEmbedding(ctx context.Context, embedding vector.Embedding) error

	// InsertComments upserts comments by id. Returns the number written.
	InsertComments(ctx context.Context, comments []reddit.Comment) (int, error)

	// PostsWithoutEmbeddings returns posts with no embedding row at all,
	// newest first, optionally scoped to a subreddit. A post with an
	// embedding from any model counts as covered.
	PostsWithoutEmbeddings(ctx context.Context, subreddit string) ([]reddit.Post, error)

	// PostsWithEmbeddings returns every (post, embedding) pair, newest post
	// first, optionally scoped to a subreddit.
	PostsWithEmbeddings(ctx context.Context, subreddit string) ([]PostEmbedding, error)

	// CountPosts returns the number of stored posts, optionally scoped to a
	// subreddit.
	CountPosts(ctx context.Context, subreddit string) (int, error)

	// CountEmbeddings returns the number of stored embedding rows.
	CountEmbeddings(ctx context.Context) (int, error)

	// CountComments returns the number of stored comments.
	CountComments(ctx context.Context) (int, error)

	// SubredditCounts returns the number of stored posts per subreddit.
	SubredditCounts(ctx context.Context) (map[string]int, error)

	// Close closes the store and releases any resources.
	Close() error
}
