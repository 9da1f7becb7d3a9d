// Package collector runs keyword sweeps across subreddits and persists
// what it finds. A sweep searches every (subreddit, keyword) pair,
// de-duplicates posts by id across the whole run, stores the fresh posts
// with their top comments, and aggregates per-subreddit and per-keyword
// counts. Individual search failures are recorded and skipped, never
// fatal to the sweep.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/eventstream"
	"github.com/papercomputeco/lurker/pkg/eventstream/nop"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
)

const (
	// DefaultPostsPerKeyword caps results per (subreddit, keyword) pair
	// when Options.PostsPerKeyword is unset.
	DefaultPostsPerKeyword = 200

	// DefaultSort orders search results when Options.Sort is unset.
	DefaultSort = "relevance"
)

// SubredditStats counts what one subreddit contributed to a sweep.
type SubredditStats struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}

// Stats summarizes a sweep run. Subreddits and Keywords keep the sweep
// order so reports render deterministically.
type Stats struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Subreddits []string `json:"subreddits"`
	Keywords   []string `json:"keywords"`

	TotalPosts        int `json:"total_posts"`
	TotalComments     int `json:"total_comments"`
	DuplicatesSkipped int `json:"duplicates_skipped"`

	BySubreddit map[string]SubredditStats `json:"by_subreddit"`
	ByKeyword   map[string]int            `json:"by_keyword"`

	Errors []string `json:"errors"`
}

// Collector sweeps subreddits for keyword matches.
type Collector struct {
	source    reddit.Source
	store     storage.Store
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// Config holds the dependencies for a Collector.
type Config struct {
	// Source provides the posts and comments.
	Source reddit.Source

	// Store receives everything collected.
	Store storage.Store

	// Publisher receives a posts-collected event after each sweep.
	// Optional; defaults to a discarding publisher.
	Publisher eventstream.Publisher

	// Logger is optional; defaults to a no-op logger.
	Logger *zap.Logger
}

// Options configures a single sweep.
type Options struct {
	// Subreddits to sweep, without the r/ prefix.
	Subreddits []string

	// Keywords searched in every subreddit.
	Keywords []string

	// PostsPerKeyword caps results per (subreddit, keyword) pair.
	// Defaults to DefaultPostsPerKeyword.
	PostsPerKeyword int

	// CommentsPerPost caps comments fetched per stored post. Zero or
	// below disables comment collection.
	CommentsPerPost int

	// Sort orders search results. Defaults to DefaultSort.
	Sort string
}

// New creates a Collector from the given config.
func New(cfg Config) (*Collector, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}

	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collector{
		source:    cfg.Source,
		store:     cfg.Store,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Sweep searches every keyword in every subreddit and persists the results.
// A post seen under one keyword is skipped when a later keyword returns it
// again, so run totals never double-count.
func (c *Collector) Sweep(ctx context.Context, opts Options) (*Stats, error) {
	if len(opts.Subreddits) == 0 {
		return nil, fmt.Errorf("at least one subreddit is required")
	}

	if len(opts.Keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}

	postsPerKeyword := opts.PostsPerKeyword
	if postsPerKeyword <= 0 {
		postsPerKeyword = DefaultPostsPerKeyword
	}

	sort := opts.Sort
	if sort == "" {
		sort = DefaultSort
	}

	stats := &Stats{
		RunID:       uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		Subreddits:  opts.Subreddits,
		Keywords:    opts.Keywords,
		BySubreddit: make(map[string]SubredditStats),
		ByKeyword:   make(map[string]int),
		Errors:      []string{},
	}

	c.logger.Info("starting sweep",
		zap.String("run_id", stats.RunID),
		zap.Strings("subreddits", opts.Subreddits),
		zap.Strings("keywords", opts.Keywords),
		zap.Int("posts_per_keyword", postsPerKeyword),
	)

	seen := make(map[string]struct{})

	for _, subreddit := range opts.Subreddits {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(stats.StartedAt)
			return stats, err
		}

		var subStats SubredditStats

		for _, keyword := range opts.Keywords {
			posts, err := c.source.Search(ctx, reddit.SearchOptions{
				Subreddit: subreddit,
				Query:     keyword,
				Sort:      sort,
				Limit:     postsPerKeyword,
			})
			if err != nil {
				msg := fmt.Sprintf("searching %q in r/%s: %v", keyword, subreddit, err)
				stats.Errors = append(stats.Errors, msg)
				c.logger.Warn("search failed",
					zap.String("subreddit", subreddit),
					zap.String("keyword", keyword),
					zap.Error(err),
				)
				continue
			}

			fresh := make([]reddit.Post, 0, len(posts))
			for _, post := range posts {
				if _, dup := seen[post.ID]; dup {
					stats.DuplicatesSkipped++
					continue
				}
				seen[post.ID] = struct{}{}
				fresh = append(fresh, post)
			}

			stored, comments := c.storeWithComments(ctx, fresh, opts.CommentsPerPost, stats)

			subStats.Posts += stored
			subStats.Comments += comments
			stats.ByKeyword[keyword] += stored

			c.logger.Info("keyword swept",
				zap.String("subreddit", subreddit),
				zap.String("keyword", keyword),
				zap.Int("stored", stored),
				zap.Int("duplicates", len(posts)-len(fresh)),
				zap.Int("comments", comments),
			)
		}

		stats.BySubreddit[subreddit] = subStats
		stats.TotalPosts += subStats.Posts
		stats.TotalComments += subStats.Comments
	}

	stats.Duration = time.Since(stats.StartedAt)

	if stats.TotalPosts > 0 {
		c.publishStats(ctx, opts.Subreddits, stats)
	}

	c.logger.Info("sweep finished",
		zap.String("run_id", stats.RunID),
		zap.Int("posts", stats.TotalPosts),
		zap.Int("comments", stats.TotalComments),
		zap.Int("duplicates_skipped", stats.DuplicatesSkipped),
		zap.Int("errors", len(stats.Errors)),
		zap.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// storeWithComments persists posts and fetches up to commentsPerPost
// comments for each one. Comment failures are logged and skipped.
func (c *Collector) storeWithComments(ctx context.Context, posts []reddit.Post, commentsPerPost int, stats *Stats) (int, int) {
	if len(posts) == 0 {
		return 0, 0
	}

	stored, err := c.store.InsertPosts(ctx, posts)
	if err != nil {
		msg := fmt.Sprintf("storing %d posts: %v", len(posts), err)
		stats.Errors = append(stats.Errors, msg)
		c.logger.Warn("failed to store posts", zap.Error(err))
		return 0, 0
	}

	if commentsPerPost <= 0 {
		return stored, 0
	}

	totalComments := 0
	for _, post := range posts {
		comments, err := c.source.Comments(ctx, post.ID, commentsPerPost)
		if err != nil {
			c.logger.Warn("failed to fetch comments",
				zap.String("post_id", post.ID),
				zap.Error(err),
			)
			continue
		}

		if len(comments) == 0 {
			continue
		}

		n, err := c.store.InsertComments(ctx, comments)
		if err != nil {
			c.logger.Warn("failed to store comments",
				zap.String("post_id", post.ID),
				zap.Error(err),
			)
			continue
		}

		totalComments += n
	}

	return stored, totalComments
}

func (c *Collector) publishStats(ctx context.Context, subreddits []string, stats *Stats) {
	event, err := eventstream.NewPostsCollected(eventstream.PostsCollectedPayload{
		RunID:      stats.RunID,
		Subreddits: subreddits,
		Posts:      stats.TotalPosts,
		Comments:   stats.TotalComments,
	})
	if err != nil {
		c.logger.Warn("failed to build posts collected event", zap.Error(err))
		return
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish posts collected event", zap.Error(err))
	}
}
