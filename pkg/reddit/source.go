package reddit

import "context"

// FetchOptions configures a listing fetch.
type FetchOptions struct {
	// Subreddit to list, without the r/ prefix.
	Subreddit string

	// Sort selects the listing. Defaults to SortHot.
	Sort Sort

	// Timespan bounds results by age. Passed to Reddit for SortTop and
	// applied client-side for every other sort.
	Timespan Timespan

	// Keyword, when set, keeps only posts whose title contains it
	// (case-insensitive).
	Keyword string

	// Limit caps the number of posts requested.
	Limit int
}

// SearchOptions configures a subreddit search.
type SearchOptions struct {
	// Subreddit to search, without the r/ prefix.
	Subreddit string

	// Query is the search string.
	Query string

	// Sort orders results. Defaults to "relevance".
	Sort string

	// Limit caps the number of posts requested.
	Limit int
}

// Source provides posts, comments, and subreddit metadata.
type Source interface {
	// Fetch returns posts from a subreddit listing.
	Fetch(ctx context.Context, opts FetchOptions) ([]Post, error)

	// Search returns posts matching a query within a subreddit.
	Search(ctx context.Context, opts SearchOptions) ([]Post, error)

	// Comments returns up to limit top-level comments for a post.
	Comments(ctx context.Context, postID string, limit int) ([]Comment, error)

	// SubredditInfo returns metadata about a subreddit.
	SubredditInfo(ctx context.Context, name string) (*SubredditInfo, error)

	// Close releases any resources held by the source.
	Close() error
}
