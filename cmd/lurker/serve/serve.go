// Package servecmder provides the serve command that runs the lurker API
// server with the MCP endpoint mounted.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/api"
	"github.com/papercomputeco/lurker/api/mcp"
	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/lurker/pkg/embeddings/utils"
	"github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/search"
	"github.com/papercomputeco/lurker/pkg/storage"
	storageutils "github.com/papercomputeco/lurker/pkg/storage/utils"
)

const serveLongDesc string = `Run the lurker API server.

Serves the collected corpus over HTTP:
  GET  /ping            Health check
  GET  /v1/stats        Post, comment, and embedding counts
  GET  /v1/posts        Recent posts
  GET  /v1/posts/:id    A single post with its comments
  GET  /v1/search       Semantic search over embedded posts
  POST /v1/mcp          MCP endpoint exposing search and status tools

Every flag falls back through the LURKER_* environment, then config.toml,
then built-in defaults. For example --api-listen is LURKER_API_LISTEN in
the environment and api.listen in config.toml.

Examples:
  lurker serve
  lurker serve -a :9090
  lurker serve --storage-driver postgres --postgres-url postgres://localhost/lurker
  LURKER_EMBEDDING_MODEL=all-minilm lurker serve`

const serveShortDesc string = "Run the lurker API server"

// serveFlags defines the flags serve shares with the config file through
// the registry, so names and viper keys cannot drift.
var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name:        "api-listen",
		Shorthand:   "a",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagStorageDriver: {
		Name:        "storage-driver",
		ViperKey:    "storage.driver",
		Description: "Storage backend (sqlite, postgres, inmemory)",
	},
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database",
	},
	config.FlagPostgresURL: {
		Name:        "postgres-url",
		ViperKey:    "storage.postgres_url",
		Description: "Postgres connection string",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider type",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding server URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		Shorthand:   "m",
		ViperKey:    "embedding.model",
		Description: "Embedding model used for search queries",
	},
}

// serveFlagKeys lists the registry keys serve binds into viper.
var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresURL,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

type ServeCommander struct {
	apiListen     string
	storageDriver string
	sqlitePath    string
	postgresURL   string
	provider      string
	target        string
	model         string

	cacheSize int
	cacheTTL  time.Duration

	debug  bool
	logger *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)

			cmder.apiListen = v.GetString("api.listen")
			cmder.storageDriver = v.GetString("storage.driver")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresURL = v.GetString("storage.postgres_url")
			cmder.provider = v.GetString("embedding.provider")
			cmder.target = v.GetString("embedding.target")
			cmder.model = v.GetString("embedding.model")

			// Cache tuning has no flags; it comes from the env or config file.
			cmder.cacheSize = v.GetInt("search.cache_size")
			cmder.cacheTTL = v.GetDuration("search.cache_ttl")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, serveFlags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagPostgresURL, &cmder.postgresURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.provider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.target)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.model)

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	store, err := storageutils.NewStore(ctx, storageutils.NewStoreOpts{
		DriverType: c.storageDriver,
		Path:       c.resolveSQLitePath(),
		ConnString: c.postgresURL,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	c.logger.Info("using storage",
		zap.String("driver", c.storageDriver),
	)

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.provider,
		TargetURL:    c.target,
		Model:        c.model,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	searcher, err := c.newSearcher(store, embedder)
	if err != nil {
		return fmt.Errorf("creating searcher: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Store:    store,
		Searcher: searcher,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.apiListen,
		Searcher:   searcher,
		MCP:        mcpServer.Handler(),
	}, store, c.logger)

	c.logger.Info("starting api server",
		zap.String("api_addr", c.apiListen),
		zap.String("embedding_model", c.model),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

// newSearcher builds the searcher that backs /v1/search and the MCP search
// tool, with the response cache sized from config.
func (c *ServeCommander) newSearcher(store storage.Store, embedder embeddings.Embedder) (*search.Searcher, error) {
	return search.New(search.Config{
		Store:     store,
		Embedder:  embedder,
		CacheSize: c.cacheSize,
		CacheTTL:  c.cacheTTL,
		Logger:    c.logger,
	})
}

// resolveSQLitePath picks the database file for the sqlite driver. An
// explicit path wins; otherwise known locations are checked before falling
// back to lurker.db in the working directory.
func (c *ServeCommander) resolveSQLitePath() string {
	if c.storageDriver != "sqlite" {
		return ""
	}
	if c.sqlitePath != "" {
		return c.sqlitePath
	}
	if found, err := sqlitepath.ResolveSQLitePath(""); err == nil {
		return found
	}
	return "lurker.db"
}
