// Package inmemory implements storage.Store backed by in-memory maps. It is
// used by tests and by ephemeral runs where persistence is not wanted.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/vector"
)

// Store implements storage.Store using in-memory maps.
type Store struct {
	mu         sync.RWMutex
	posts      map[string]reddit.Post
	embeddings []vector.Embedding
	comments   map[string]reddit.Comment
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		posts:    make(map[string]reddit.Post),
		comments: make(map[string]reddit.Comment),
	}
}

// InsertPosts upserts posts by id.
func (s *Store) InsertPosts(_ context.Context, posts []reddit.Post) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range posts {
		s.posts[post.ID] = post
	}

	return len(posts), nil
}

// GetPost retrieves a post by its id.
func (s *Store) GetPost(_ context.Context, id string) (*reddit.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return &post, nil
}

// RecentPosts returns up to limit posts, newest first.
func (s *Store) RecentPosts(_ context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := s.sortedPosts(subreddit)
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

// InsertEmbedding appends an embedding row.
func (s *Store) InsertEmbedding(_ context.Context, embedding vector.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if embedding.CreatedAt.IsZero() {
		embedding.CreatedAt = time.Now()
	}
	s.embeddings = append(s.embeddings, embedding)

	return nil
}

// InsertComments upserts comments by id.
func (s *Store) InsertComments(_ context.Context, comments []reddit.Comment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, comment := range comments {
		s.comments[comment.ID] = comment
	}

	return len(comments), nil
}

// PostsWithoutEmbeddings returns posts with no embedding row, newest first.
func (s *Store) PostsWithoutEmbeddings(_ context.Context, subreddit string) ([]reddit.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	covered := make(map[string]bool, len(s.embeddings))
	for _, e := range s.embeddings {
		covered[e.PostID] = true
	}

	uncovered := []reddit.Post{}
	for _, post := range s.sortedPosts(subreddit) {
		if !covered[post.ID] {
			uncovered = append(uncovered, post)
		}
	}

	return uncovered, nil
}

// PostsWithEmbeddings returns every (post, embedding) pair, newest post first.
func (s *Store) PostsWithEmbeddings(_ context.Context, subreddit string) ([]storage.PostEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPost := make(map[string][]vector.Embedding, len(s.embeddings))
	for _, e := range s.embeddings {
		byPost[e.PostID] = append(byPost[e.PostID], e)
	}

	pairs := []storage.PostEmbedding{}
	for _, post := range s.sortedPosts(subreddit) {
		for _, e := range byPost[post.ID] {
			pairs = append(pairs, storage.PostEmbedding{Post: post, Embedding: e})
		}
	}

	return pairs, nil
}

// CountPosts returns the number of stored posts.
func (s *Store) CountPosts(_ context.Context, subreddit string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if subreddit == "" {
		return len(s.posts), nil
	}

	count := 0
	for _, post := range s.posts {
		if post.Subreddit == subreddit {
			count++
		}
	}

	return count, nil
}

// CountEmbeddings returns the number of stored embedding rows.
func (s *Store) CountEmbeddings(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.embeddings), nil
}

// CountComments returns the number of stored comments.
func (s *Store) CountComments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments), nil
}

// SubredditCounts returns the number of stored posts per subreddit.
func (s *Store) SubredditCounts(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, post := range s.posts {
		counts[post.Subreddit]++
	}

	return counts, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// sortedPosts returns posts newest first, id-ordered on equal timestamps so
// results stay deterministic. Callers must hold at least the read lock.
func (s *Store) sortedPosts(subreddit string) []reddit.Post {
	posts := make([]reddit.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if subreddit != "" && post.Subreddit != subreddit {
			continue
		}
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedUTC.Equal(posts[j].CreatedUTC) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedUTC.After(posts[j].CreatedUTC)
	})

	return posts
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)
