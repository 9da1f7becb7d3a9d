package config

const (
	defaultStorageDriver = "sqlite"

	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultUserAgent = "RedditTopicModeler/1.0"

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "nomic-embed-text"
	defaultEmbeddingWorkers  = 3

	defaultSearchTopK      = 10
	defaultSearchCacheSize = 128
	defaultSearchCacheTTL  = "5m"

	defaultPostsPerKeyword = 200
	defaultCommentsPerPost = 2
	defaultTimespan        = "month"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "lurker.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Reddit: RedditConfig{
			UserAgent: defaultUserAgent,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
			Workers:  defaultEmbeddingWorkers,
		},
		Search: SearchConfig{
			TopK:      defaultSearchTopK,
			CacheSize: defaultSearchCacheSize,
			CacheTTL:  defaultSearchCacheTTL,
		},
		Collection: CollectionConfig{
			PostsPerKeyword: defaultPostsPerKeyword,
			CommentsPerPost: defaultCommentsPerPost,
			Timespan:        defaultTimespan,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
