package testutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/lurker/pkg/reddit"
)

// MockSource is a test source that returns canned Reddit data.
type MockSource struct {
	// FetchPosts is returned by Fetch for any options.
	FetchPosts []reddit.Post

	// SearchResults maps "subreddit/query" to the posts Search returns.
	SearchResults map[string][]reddit.Post

	// CommentsByPost maps post ID to the comments Comments returns.
	CommentsByPost map[string][]reddit.Comment

	// Info is returned by SubredditInfo. A nil Info yields ErrNotFound.
	Info *reddit.SubredditInfo

	// FailSearchOn causes Search to fail for a "subreddit/query" key.
	FailSearchOn string

	// FailComments causes every Comments call to fail.
	FailComments bool

	FetchCalls  []reddit.FetchOptions
	SearchCalls []reddit.SearchOptions
}

func NewMockSource() *MockSource {
	return &MockSource{
		SearchResults:  make(map[string][]reddit.Post),
		CommentsByPost: make(map[string][]reddit.Comment),
	}
}

func (m *MockSource) Fetch(_ context.Context, opts reddit.FetchOptions) ([]reddit.Post, error) {
	m.FetchCalls = append(m.FetchCalls, opts)
	return m.FetchPosts, nil
}

func (m *MockSource) Search(_ context.Context, opts reddit.SearchOptions) ([]reddit.Post, error) {
	m.SearchCalls = append(m.SearchCalls, opts)

	key := opts.Subreddit + "/" + opts.Query
	if m.FailSearchOn != "" && key == m.FailSearchOn {
		return nil, fmt.Errorf("mock search failure for: %s", key)
	}

	return m.SearchResults[key], nil
}

func (m *MockSource) Comments(_ context.Context, postID string, limit int) ([]reddit.Comment, error) {
	if m.FailComments {
		return nil, fmt.Errorf("mock comments failure for: %s", postID)
	}

	comments := m.CommentsByPost[postID]
	if limit >= 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

func (m *MockSource) SubredditInfo(_ context.Context, name string) (*reddit.SubredditInfo, error) {
	if m.Info == nil {
		return nil, fmt.Errorf("%w: no such subreddit: %s", reddit.ErrNotFound, name)
	}
	return m.Info, nil
}

func (m *MockSource) Close() error {
	return nil
}
