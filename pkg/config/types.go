package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent lurker configuration stored as config.toml
// in the .lurker/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Storage    StorageConfig    `toml:"storage"`
	API        APIConfig        `toml:"api"`
	Client     ClientConfig     `toml:"client"`
	Reddit     RedditConfig     `toml:"reddit"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Search     SearchConfig     `toml:"search"`
	Collection CollectionConfig `toml:"collection"`
	Events     EventsConfig     `toml:"events"`
}

// StorageConfig holds storage backend settings.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// lurkerd API server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// RedditConfig holds Reddit client settings. Credentials never live here;
// they come from the environment or a .env file.
type RedditConfig struct {
	UserAgent string `toml:"user_agent,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	Workers  uint   `toml:"workers,omitempty"`
}

// SearchConfig holds semantic search settings.
type SearchConfig struct {
	TopK      uint   `toml:"top_k,omitempty"`
	CacheSize uint   `toml:"cache_size,omitempty"`
	CacheTTL  string `toml:"cache_ttl,omitempty"`
}

// CollectionConfig holds sweep settings: which subreddits to search with
// which keywords, and how much to pull per pair.
type CollectionConfig struct {
	Subreddits      []string `toml:"subreddits,omitempty"`
	Keywords        []string `toml:"keywords,omitempty"`
	PostsPerKeyword uint     `toml:"posts_per_keyword,omitempty"`
	CommentsPerPost uint     `toml:"comments_per_post,omitempty"`
	Timespan        string   `toml:"timespan,omitempty"`
}

// EventsConfig holds event stream publisher settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// splitList parses a comma-separated value into a trimmed string slice.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// List-valued keys accept comma-separated values.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_url": {
		get: func(c *Config) string { return c.Storage.PostgresURL },
		set: func(c *Config, v string) error { c.Storage.PostgresURL = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"reddit.user_agent": {
		get: func(c *Config) string { return c.Reddit.UserAgent },
		set: func(c *Config, v string) error { c.Reddit.UserAgent = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.workers": {
		get: func(c *Config) string {
			if c.Embedding.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.workers: %w", err)
			}
			c.Embedding.Workers = uint(n)
			return nil
		},
	},
	"search.top_k": {
		get: func(c *Config) string {
			if c.Search.TopK == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Search.TopK), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for search.top_k: %w", err)
			}
			c.Search.TopK = uint(n)
			return nil
		},
	},
	"search.cache_size": {
		get: func(c *Config) string {
			if c.Search.CacheSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Search.CacheSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for search.cache_size: %w", err)
			}
			c.Search.CacheSize = uint(n)
			return nil
		},
	},
	"search.cache_ttl": {
		get: func(c *Config) string { return c.Search.CacheTTL },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for search.cache_ttl: %w", err)
			}
			c.Search.CacheTTL = v
			return nil
		},
	},
	"collection.subreddits": {
		get: func(c *Config) string { return strings.Join(c.Collection.Subreddits, ",") },
		set: func(c *Config, v string) error { c.Collection.Subreddits = splitList(v); return nil },
	},
	"collection.keywords": {
		get: func(c *Config) string { return strings.Join(c.Collection.Keywords, ",") },
		set: func(c *Config, v string) error { c.Collection.Keywords = splitList(v); return nil },
	},
	"collection.posts_per_keyword": {
		get: func(c *Config) string {
			if c.Collection.PostsPerKeyword == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Collection.PostsPerKeyword), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for collection.posts_per_keyword: %w", err)
			}
			c.Collection.PostsPerKeyword = uint(n)
			return nil
		},
	},
	"collection.comments_per_post": {
		get: func(c *Config) string {
			if c.Collection.CommentsPerPost == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Collection.CommentsPerPost), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for collection.comments_per_post: %w", err)
			}
			c.Collection.CommentsPerPost = uint(n)
			return nil
		},
	},
	"collection.timespan": {
		get: func(c *Config) string { return c.Collection.Timespan },
		set: func(c *Config, v string) error { c.Collection.Timespan = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
