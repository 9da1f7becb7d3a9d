// Package api implements reddit.Source against the public Reddit JSON API.
//
// Authentication uses the OAuth2 client-credentials grant for script apps:
// the client id and secret are exchanged for a bearer token at
// www.reddit.com and all data requests go to oauth.reddit.com. Requests
// are rate limited to stay inside Reddit's free-tier budget.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/lurker/pkg/credentials"
	"github.com/papercomputeco/lurker/pkg/reddit"
)

const (
	// DefaultBaseURL is the authenticated Reddit API host.
	DefaultBaseURL = "https://oauth.reddit.com"

	// DefaultTokenURL is the OAuth2 token endpoint.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

	// pageLimit is the most posts Reddit returns per listing request.
	pageLimit = 100

	// defaultListingLimit matches Reddit's own default page size.
	defaultListingLimit = 25

	// tokenExpiryMargin refreshes the token slightly before Reddit
	// would reject it.
	tokenExpiryMargin = 60 * time.Second

	kindPost    = "t3"
	kindComment = "t1"
)

// Client talks to the Reddit API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	tokenURL   string
	creds      *credentials.Reddit
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Config holds configuration for the Reddit client.
type Config struct {
	// Credentials are required.
	Credentials *credentials.Reddit

	// UserAgent identifies this client to Reddit. Required; Reddit
	// throttles generic user agents aggressively.
	UserAgent string

	// BaseURL overrides the API host, used by tests.
	BaseURL string

	// TokenURL overrides the token endpoint, used by tests.
	TokenURL string

	// Logger is optional.
	Logger *zap.Logger
}

// NewClient creates a Reddit API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Credentials == nil {
		return nil, credentials.ErrMissingCredentials
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("user agent must not be empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   baseURL,
		tokenURL:  tokenURL,
		creds:     cfg.Credentials,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 req/s with a small burst keeps well under Reddit's
		// 100 requests/minute free tier.
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:  logger,
	}, nil
}

// Fetch returns posts from a subreddit listing. The keyword filter and, for
// non-top sorts, the timespan filter are applied client-side after fetching,
// so fewer than opts.Limit posts may come back.
func (c *Client) Fetch(ctx context.Context, opts reddit.FetchOptions) ([]reddit.Post, error) {
	sort := opts.Sort
	if sort == "" {
		sort = reddit.SortHot
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListingLimit
	}

	query := url.Values{}
	if sort == reddit.SortTop && opts.Timespan != "" {
		query.Set("t", string(opts.Timespan))
	}

	path := fmt.Sprintf("/r/%s/%s.json", opts.Subreddit, sort)
	posts, err := c.listPosts(ctx, path, query, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	keyword := strings.ToLower(opts.Keyword)
	filtered := make([]reddit.Post, 0, len(posts))
	for _, post := range posts {
		if keyword != "" && !strings.Contains(strings.ToLower(post.Title), keyword) {
			continue
		}
		// Top listings are already bounded server-side via t=.
		if sort != reddit.SortTop && !opts.Timespan.Contains(post.CreatedUTC, now) {
			continue
		}
		filtered = append(filtered, post)
	}

	c.logger.Debug("fetched posts",
		zap.String("subreddit", opts.Subreddit),
		zap.String("sort", string(sort)),
		zap.Int("fetched", len(posts)),
		zap.Int("kept", len(filtered)),
	)
	return filtered, nil
}

// Search returns posts matching a query within a subreddit.
func (c *Client) Search(ctx context.Context, opts reddit.SearchOptions) ([]reddit.Post, error) {
	if opts.Query == "" {
		return nil, errors.New("search query must not be empty")
	}

	sort := opts.Sort
	if sort == "" {
		sort = "relevance"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListingLimit
	}

	query := url.Values{}
	query.Set("q", opts.Query)
	query.Set("restrict_sr", "on")
	query.Set("sort", sort)

	path := fmt.Sprintf("/r/%s/search.json", opts.Subreddit)
	posts, err := c.listPosts(ctx, path, query, limit)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("searched posts",
		zap.String("subreddit", opts.Subreddit),
		zap.String("query", opts.Query),
		zap.Int("found", len(posts)),
	)
	return posts, nil
}

// Comments returns up to limit comments for a post. Comments whose body was
// deleted are skipped, as are unexpanded "more" stubs.
func (c *Client) Comments(ctx context.Context, postID string, limit int) ([]reddit.Comment, error) {
	if limit <= 0 {
		return []reddit.Comment{}, nil
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sort", "top")

	// The comments endpoint returns a two-element array: the post
	// listing followed by the comment listing.
	var listings []listing
	if err := c.get(ctx, "/comments/"+postID+".json", query, &listings); err != nil {
		return nil, err
	}

	if len(listings) < 2 {
		return nil, fmt.Errorf("%w: malformed comments response for %s", reddit.ErrConnection, postID)
	}

	comments := make([]reddit.Comment, 0, limit)
	for _, child := range listings[1].Data.Children {
		if len(comments) >= limit {
			break
		}
		if child.Kind != kindComment {
			continue
		}

		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			return nil, fmt.Errorf("%w: failed to decode comment: %v", reddit.ErrConnection, err)
		}
		if cd.Body == reddit.DeletedAuthor {
			continue
		}

		comments = append(comments, cd.toComment(postID))
	}

	c.logger.Debug("fetched comments",
		zap.String("post_id", postID),
		zap.Int("count", len(comments)),
	)
	return comments, nil
}

// SubredditInfo returns metadata about a subreddit.
func (c *Client) SubredditInfo(ctx context.Context, name string) (*reddit.SubredditInfo, error) {
	var about thing
	if err := c.get(ctx, "/r/"+name+"/about.json", url.Values{}, &about); err != nil {
		return nil, err
	}

	var ad aboutData
	if err := json.Unmarshal(about.Data, &ad); err != nil {
		return nil, fmt.Errorf("%w: failed to decode subreddit info: %v", reddit.ErrConnection, err)
	}

	info := ad.toInfo()
	return &info, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// listPosts pages through a listing endpoint until limit posts are collected
// or the listing runs out. Reddit caps each page at pageLimit posts.
func (c *Client) listPosts(ctx context.Context, path string, base url.Values, limit int) ([]reddit.Post, error) {
	posts := make([]reddit.Post, 0, limit)
	after := ""

	for len(posts) < limit {
		pageSize := limit - len(posts)
		if pageSize > pageLimit {
			pageSize = pageLimit
		}

		query := url.Values{}
		for k, vs := range base {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("raw_json", "1")
		if after != "" {
			query.Set("after", after)
		}

		var page listing
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, err
		}

		if len(page.Data.Children) == 0 {
			break
		}

		for _, child := range page.Data.Children {
			if child.Kind != kindPost {
				continue
			}

			var pd postData
			if err := json.Unmarshal(child.Data, &pd); err != nil {
				return nil, fmt.Errorf("%w: failed to decode post: %v", reddit.ErrConnection, err)
			}
			posts = append(posts, pd.toPost())
		}

		after = page.Data.After
		if after == "" {
			break
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// get performs an authenticated GET and decodes the JSON response into v.
// A stale token is refreshed and the request retried once.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", reddit.ErrConnection, err)
	}

	for attempt := 0; ; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return fmt.Errorf("%w: failed to create request: %v", reddit.ErrConnection, err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: failed to reach reddit: %v", reddit.ErrConnection, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && attempt == 0:
			resp.Body.Close()
			c.invalidateToken()
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("%w: reddit returned status %d", reddit.ErrCredentials, resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%w: %s", reddit.ErrNotFound, path)
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return fmt.Errorf("%w: reddit returned status %d", reddit.ErrConnection, resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", reddit.ErrConnection, err)
		}
		return nil
	}
}

// token returns a valid access token, authenticating if the cached one is
// missing or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create token request: %v", reddit.ErrCredentials, err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to reach reddit auth: %v", reddit.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", reddit.ErrCredentials, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", reddit.ErrCredentials, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access token", reddit.ErrCredentials)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	c.logger.Debug("authenticated with reddit", zap.Int("expires_in", tok.ExpiresIn))

	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// Ensure Client implements reddit.Source
var _ reddit.Source = (*Client)(nil)
