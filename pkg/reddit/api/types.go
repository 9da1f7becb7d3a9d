package api

import (
	"encoding/json"
	"time"

	"github.com/papercomputeco/lurker/pkg/reddit"
)

// tokenResponse is the OAuth2 client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// thing is the generic Reddit API envelope: a kind tag plus raw payload.
// Post things are kind "t3", comments "t1", subreddits "t5".
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listing is the paginated container Reddit wraps results in.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// postData is the wire form of a t3 submission.
type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	IsSelf      bool    `json:"is_self"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// toPost converts wire form to the domain type. Link posts carry no content;
// a missing author means the account was deleted.
func (p postData) toPost() reddit.Post {
	content := ""
	if p.IsSelf {
		content = p.SelfText
	}

	author := p.Author
	if author == "" {
		author = reddit.DeletedAuthor
	}

	return reddit.Post{
		ID:          p.ID,
		Title:       p.Title,
		Content:     content,
		Author:      author,
		Subreddit:   p.Subreddit,
		Score:       p.Score,
		NumComments: p.NumComments,
		CreatedUTC:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
		URL:         p.URL,
		Permalink:   "https://reddit.com" + p.Permalink,
		IsSelf:      p.IsSelf,
		UpvoteRatio: p.UpvoteRatio,
	}
}

// commentData is the wire form of a t1 comment.
type commentData struct {
	ID          string  `json:"id"`
	Author      string  `json:"author"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	ParentID    string  `json:"parent_id"`
	IsSubmitter bool    `json:"is_submitter"`
}

func (c commentData) toComment(postID string) reddit.Comment {
	author := c.Author
	if author == "" {
		author = reddit.DeletedAuthor
	}

	return reddit.Comment{
		ID:          c.ID,
		PostID:      postID,
		Author:      author,
		Body:        c.Body,
		Score:       c.Score,
		CreatedUTC:  time.Unix(int64(c.CreatedUTC), 0).UTC(),
		ParentID:    c.ParentID,
		IsSubmitter: c.IsSubmitter,
	}
}

// aboutData is the wire form of a t5 subreddit.
type aboutData struct {
	DisplayName       string  `json:"display_name"`
	Title             string  `json:"title"`
	PublicDescription string  `json:"public_description"`
	Subscribers       int     `json:"subscribers"`
	ActiveUserCount   int     `json:"active_user_count"`
	CreatedUTC        float64 `json:"created_utc"`
}

func (a aboutData) toInfo() reddit.SubredditInfo {
	return reddit.SubredditInfo{
		Name:        a.DisplayName,
		Title:       a.Title,
		Description: a.PublicDescription,
		Subscribers: a.Subscribers,
		ActiveUsers: a.ActiveUserCount,
		CreatedUTC:  time.Unix(int64(a.CreatedUTC), 0).UTC(),
	}
}
