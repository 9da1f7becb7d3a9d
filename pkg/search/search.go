// Package search embeds a query and ranks stored posts against it by
// cosine similarity. All stored (post, embedding) pairs are candidates;
// ranking happens in memory on every request, with an optional expiring
// LRU cache in front for repeated queries.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/embeddings"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/vector"
)

const (
	// DefaultTopK caps results when Options.TopK is unset.
	DefaultTopK = 10

	// DefaultCacheTTL expires cached responses when Config.CacheTTL is
	// unset and caching is enabled.
	DefaultCacheTTL = 5 * time.Minute
)

// Result pairs a matched post with its similarity score.
type Result struct {
	Post  reddit.Post `json:"post"`
	Score float64     `json:"score"`
}

// Output is one search response.
type Output struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Options scope a single search.
type Options struct {
	// Subreddit restricts candidates; empty searches everything.
	Subreddit string

	// TopK caps the number of results. Defaults to DefaultTopK.
	TopK int
}

// Config holds the dependencies for a Searcher.
type Config struct {
	// Store provides the candidate posts and their embeddings.
	Store storage.Store

	// Embedder turns the query into a vector.
	Embedder embeddings.Embedder

	// CacheSize bounds the response cache. Zero disables caching.
	CacheSize int

	// CacheTTL expires cached responses. Defaults to DefaultCacheTTL.
	CacheTTL time.Duration

	// Logger is optional; defaults to a no-op logger.
	Logger *zap.Logger
}

// Searcher runs semantic searches over the stored corpus.
type Searcher struct {
	store    storage.Store
	embedder embeddings.Embedder
	cache    *expirable.LRU[string, Output]
	logger   *zap.Logger

	// generation is folded into cache keys. Invalidate bumps it, orphaning
	// every cached response at once without walking the LRU.
	generation atomic.Uint64
}

// New creates a Searcher from the given config.
func New(cfg Config) (*Searcher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var cache *expirable.LRU[string, Output]
	if cfg.CacheSize > 0 {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		cache = expirable.NewLRU[string, Output](cfg.CacheSize, nil, ttl)
	}

	return &Searcher{
		store:    cfg.Store,
		embedder: cfg.Embedder,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Search embeds query and returns the topK most similar stored posts. A
// post with embeddings from several models is a candidate once per
// embedding and can appear more than once in the results.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (Output, error) {
	if strings.TrimSpace(query) == "" {
		return Output{}, fmt.Errorf("query must not be empty")
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	key := cacheKey(s.generation.Load(), query, opts.Subreddit, topK)
	if s.cache != nil {
		if out, ok := s.cache.Get(key); ok {
			s.logger.Debug("search cache hit",
				zap.String("query", query),
				zap.String("subreddit", opts.Subreddit),
			)
			return out, nil
		}
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Output{}, fmt.Errorf("%w: failed to embed query: %v", vector.ErrEmbedding, err)
	}

	pairs, err := s.store.PostsWithEmbeddings(ctx, opts.Subreddit)
	if err != nil {
		return Output{}, fmt.Errorf("failed to load stored embeddings: %w", err)
	}

	candidates := make([]vector.Candidate, 0, len(pairs))
	postsByID := make(map[string]reddit.Post, len(pairs))
	for _, pair := range pairs {
		candidates = append(candidates, vector.Candidate{
			PostID: pair.Post.ID,
			Vector: pair.Embedding.Vector,
		})
		postsByID[pair.Post.ID] = pair.Post
	}

	matches := vector.Rank(queryVector, candidates, topK)

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		post, ok := postsByID[match.PostID]
		if !ok {
			// A match without a resolvable post is dropped, not fatal.
			s.logger.Warn("ranked match has no stored post",
				zap.String("post_id", match.PostID),
			)
			continue
		}

		results = append(results, Result{Post: post, Score: match.Score})
	}

	out := Output{
		Query:   query,
		Results: results,
		Count:   len(results),
	}

	s.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", out.Count),
	)

	if s.cache != nil {
		s.cache.Add(key, out)
	}

	return out, nil
}

// Invalidate drops all cached responses. Callers that write new posts or
// embeddings in-process should invalidate so searches see them before the
// TTL would have expired the stale entries.
func (s *Searcher) Invalidate() {
	if s.cache == nil {
		return
	}
	s.generation.Add(1)
}

func cacheKey(generation uint64, query, subreddit string, topK int) string {
	return fmt.Sprintf("%d|%s|%s|%d", generation, query, subreddit, topK)
}
