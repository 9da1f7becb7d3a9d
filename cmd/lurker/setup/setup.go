// Package setupcmder provides the setup command that verifies the local
// environment is ready for collection, embedding, and search.
package setupcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/credentials"
	"github.com/papercomputeco/lurker/pkg/embeddings/ollama"
	redditapi "github.com/papercomputeco/lurker/pkg/reddit/api"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

// probeSubreddit is the subreddit fetched to verify API access. r/test
// exists for exactly this purpose.
const probeSubreddit = "test"

const setupLongDesc string = `Verify the local environment before collecting.

Runs three checks:
  1. Reddit    credentials resolve from the environment (or .env) and the
               API answers an authenticated request
  2. Ollama    the embedding server is reachable and the configured model
               is present (pass --pull to download it when missing)
  3. SQLite    the database opens and migrates

Each check prints a ✓ or ✗. The command exits non-zero when any check
fails, so it can gate scripts.

Examples:
  lurker setup
  lurker setup --pull
  lurker setup --sqlite ./lurker.db
  lurker setup --embedding-target http://gpu-box:11434 --model all-minilm`

const setupShortDesc string = "Check Reddit, Ollama, and database connectivity"

type setupCommander struct {
	sqlitePath      string
	embeddingTarget string
	model           string
	pull            bool
}

func NewSetupCmd() *cobra.Command {
	cmder := &setupCommander{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: setupShortDesc,
		Long:  setupLongDesc,
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

			if !cmd.Flags().Changed("embedding-target") {
				cmder.embeddingTarget = cfg.Embedding.Target
			}
			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Embedding.Model
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.embeddingTarget, "embedding-target", defaults.Embedding.Target, "Ollama server URL")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Embedding.Model, "Embedding model to check for")
	cmd.Flags().BoolVar(&cmder.pull, "pull", false, "Pull the embedding model when missing")

	return cmd
}

func (c *setupCommander) run(ctx context.Context) error {
	fmt.Println()

	failures := 0

	if err := cliui.Step(os.Stdout, "Checking Reddit credentials", func() error {
		return c.checkReddit(ctx)
	}); err != nil {
		failures++
		fmt.Printf("    %s\n", cliui.DimStyle.Render(err.Error()))
	}

	if err := cliui.Step(os.Stdout, fmt.Sprintf("Checking Ollama at %s", c.embeddingTarget), func() error {
		return c.checkOllama(ctx)
	}); err != nil {
		failures++
		fmt.Printf("    %s\n", cliui.DimStyle.Render(err.Error()))
	}

	if err := cliui.Step(os.Stdout, "Checking SQLite database", func() error {
		return c.checkSQLite()
	}); err != nil {
		failures++
		fmt.Printf("    %s\n", cliui.DimStyle.Render(err.Error()))
	}

	fmt.Println()

	if failures > 0 {
		return fmt.Errorf("%d setup check(s) failed", failures)
	}

	fmt.Printf("  %s All checks passed. Ready to collect.\n\n", cliui.SuccessMark)
	return nil
}

// checkReddit resolves credentials and runs one authenticated request.
func (c *setupCommander) checkReddit(ctx context.Context) error {
	creds := credentials.Load()
	if err := creds.Validate(); err != nil {
		return err
	}

	client, err := redditapi.NewClient(redditapi.Config{
		Credentials: creds,
		UserAgent:   creds.ResolveUserAgent(config.NewDefaultConfig().Reddit.UserAgent),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.SubredditInfo(ctx, probeSubreddit); err != nil {
		return err
	}
	return nil
}

// checkOllama lists models on the server and verifies the configured model
// is present, pulling it when --pull was given.
func (c *setupCommander) checkOllama(ctx context.Context) error {
	embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
		BaseURL: c.embeddingTarget,
		Model:   c.model,
	})
	if err != nil {
		return err
	}
	defer embedder.Close()

	if c.pull {
		pulled, err := embedder.EnsureModel(ctx, c.model)
		if err != nil {
			return err
		}
		if pulled {
			fmt.Printf("\r    %s\n", cliui.DimStyle.Render(fmt.Sprintf("pulled %s", c.model)))
		}
		return nil
	}

	models, err := embedder.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, m := range models {
		if m.Name == c.model || strings.HasPrefix(m.Name, c.model+":") {
			return nil
		}
	}

	return fmt.Errorf("model %s not found on server; rerun with --pull", c.model)
}

// checkSQLite opens (and migrates) the database. A resolvable existing
// database is preferred; otherwise the default filename is created.
func (c *setupCommander) checkSQLite() error {
	path := c.sqlitePath
	if path == "" {
		resolved, err := sqlitepath.ResolveSQLitePath("")
		if err == nil {
			path = resolved
		} else {
			path = "lurker.db"
		}
	}

	store, err := sqlite.NewStore(sqlite.Config{Path: path})
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
