// Package embedcmder provides the embed command that generates embeddings
// for stored posts that do not have one yet.
package embedcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/lurker/pkg/embeddings/utils"
	eventstreamutils "github.com/papercomputeco/lurker/pkg/eventstream/utils"
	"github.com/papercomputeco/lurker/pkg/indexer"
	"github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

const embedLongDesc string = `Generate embeddings for stored posts that lack one.

Posts are selected newest first, embedded in batches through the configured
embedding provider, and each resulting vector is stored tagged with the
model that produced it. A post that fails to embed is skipped and counted;
the run continues. Posts that already have an embedding from any model are
never re-embedded.

The configured model is pulled automatically when missing from the server.

Examples:
  lurker embed
  lurker embed -s sales
  lurker embed --workers 5 --batch-size 20
  lurker embed -m all-minilm --embedding-target http://gpu-box:11434`

const embedShortDesc string = "Embed posts that lack embeddings"

type embedCommander struct {
	subreddit       string
	workers         uint
	batchSize       uint
	model           string
	provider        string
	embeddingTarget string
	sqlitePath      string

	eventsProvider string
	eventsBrokers  []string
	eventsTopic    string

	debug  bool
	logger *zap.Logger
}

func NewEmbedCmd() *cobra.Command {
	cmder := &embedCommander{}

	cmd := &cobra.Command{
		Use:   "embed",
		Short: embedShortDesc,
		Long:  embedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Embedding.Model
			}
			if !cmd.Flags().Changed("provider") {
				cmder.provider = cfg.Embedding.Provider
			}
			if !cmd.Flags().Changed("embedding-target") {
				cmder.embeddingTarget = cfg.Embedding.Target
			}
			if !cmd.Flags().Changed("workers") {
				cmder.workers = cfg.Embedding.Workers
			}
			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Storage.SQLitePath
			}

			cmder.eventsProvider = cfg.Events.Provider
			cmder.eventsBrokers = cfg.Events.Brokers
			cmder.eventsTopic = cfg.Events.Topic
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

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.subreddit, "subreddit", "s", "", "Only embed posts from this subreddit")
	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", defaults.Embedding.Workers, "Concurrent embedding requests")
	cmd.Flags().UintVarP(&cmder.batchSize, "batch-size", "b", indexer.DefaultBatchSize, "Posts embedded per persistence round")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Embedding.Model, "Embedding model name")
	cmd.Flags().StringVar(&cmder.provider, "provider", defaults.Embedding.Provider, "Embedding provider type")
	cmd.Flags().StringVar(&cmder.embeddingTarget, "embedding-target", defaults.Embedding.Target, "Embedding server URL")
	cmd.Flags().StringVar(&cmder.sqlitePath, "sqlite", "", "Path to SQLite database")

	return cmd
}

func (c *embedCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	store, err := sqlite.NewStore(sqlite.Config{
		Path:   c.resolveSQLitePath(),
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.provider,
		TargetURL:    c.embeddingTarget,
		Model:        c.model,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	if mm, ok := embedder.(embeddings.ModelManager); ok {
		if err := cliui.Step(os.Stdout, fmt.Sprintf("Ensuring model %s", c.model), func() error {
			_, ensureErr := mm.EnsureModel(ctx, c.model)
			return ensureErr
		}); err != nil {
			return err
		}
	}

	publisher, err := eventstreamutils.NewPublisher(eventstreamutils.NewPublisherOpts{
		ProviderType: c.eventsProvider,
		Brokers:      c.eventsBrokers,
		Topic:        c.eventsTopic,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	ix, err := indexer.New(indexer.Config{
		Store:     store,
		Embedder:  embedder,
		Model:     c.model,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating indexer: %w", err)
	}

	var bar *progressbar.ProgressBar
	result, err := ix.Run(ctx, indexer.Options{
		Subreddit: c.subreddit,
		Workers:   int(c.workers),
		BatchSize: int(c.batchSize),
		OnProgress: func(done, total int) {
			// The indexer serializes progress callbacks, so lazy init
			// is safe once the total is known.
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("Embedding"),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)
			}
			_ = bar.Set(done)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(result.Summary()),
	)
	return nil
}

func (c *embedCommander) resolveSQLitePath() string {
	path, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err == nil {
		return path
	}
	return "lurker.db"
}
