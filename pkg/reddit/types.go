// Package reddit defines the domain types for collected Reddit content and
// the Source interface implemented by post providers.
package reddit

import (
	"fmt"
	"strings"
	"time"
)

// DeletedAuthor is the author recorded for posts and comments whose account
// has been removed.
const DeletedAuthor = "[deleted]"

// Post represents a collected Reddit post.
type Post struct {
	// ID is the Reddit base36 post id, unique across all of Reddit.
	ID string `json:"id" db:"id"`

	// Title is the post headline.
	Title string `json:"title" db:"title"`

	// Content is the selftext body. Empty for link posts.
	Content string `json:"content" db:"content"`

	Author      string    `json:"author" db:"author"`
	Subreddit   string    `json:"subreddit" db:"subreddit"`
	Score       int       `json:"score" db:"score"`
	NumComments int       `json:"num_comments" db:"num_comments"`
	CreatedUTC  time.Time `json:"created_utc" db:"created_utc"`
	URL         string    `json:"url" db:"url"`
	Permalink   string    `json:"permalink" db:"permalink"`
	IsSelf      bool      `json:"is_self" db:"is_self"`
	UpvoteRatio float64   `json:"upvote_ratio" db:"upvote_ratio"`
}

// EmbeddingText returns the canonical text embedded for this post: the title,
// plus the body when it is non-empty after trimming. The labeled layout keeps
// title and body distinguishable to the embedding model, with the title
// carrying the leading position.
func (p Post) EmbeddingText() string {
	text := fmt.Sprintf("Title: %s", p.Title)
	if strings.TrimSpace(p.Content) != "" {
		text += fmt.Sprintf("\n\nContent: %s", p.Content)
	}
	return text
}

// Comment represents a collected comment on a post.
type Comment struct {
	ID          string    `json:"id" db:"id"`
	PostID      string    `json:"post_id" db:"post_id"`
	Author      string    `json:"author" db:"author"`
	Body        string    `json:"body" db:"body"`
	Score       int       `json:"score" db:"score"`
	CreatedUTC  time.Time `json:"created_utc" db:"created_utc"`
	ParentID    string    `json:"parent_id" db:"parent_id"`
	IsSubmitter bool      `json:"is_submitter" db:"is_submitter"`
}

// SubredditInfo describes a subreddit.
type SubredditInfo struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subscribers int       `json:"subscribers"`
	ActiveUsers int       `json:"active_users"`
	CreatedUTC  time.Time `json:"created_utc"`
}

// Sort is a Reddit listing sort order.
type Sort string

const (
	SortHot    Sort = "hot"
	SortNew    Sort = "new"
	SortTop    Sort = "top"
	SortRising Sort = "rising"
)

// Timespan is a Reddit listing time window.
type Timespan string

const (
	TimespanDay   Timespan = "day"
	TimespanWeek  Timespan = "week"
	TimespanMonth Timespan = "month"
	TimespanYear  Timespan = "year"
	TimespanAll   Timespan = "all"
)

// Contains reports whether created falls inside the timespan measured back
// from now. Unknown timespans and TimespanAll contain everything.
func (t Timespan) Contains(created, now time.Time) bool {
	age := now.Sub(created)

	switch t {
	case TimespanDay:
		return age <= 24*time.Hour
	case TimespanWeek:
		return age <= 7*24*time.Hour
	case TimespanMonth:
		return age <= 30*24*time.Hour
	case TimespanYear:
		return age <= 365*24*time.Hour
	default:
		return true
	}
}
