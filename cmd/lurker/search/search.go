// Package searchcmder provides the search command for semantic search over posts.
package searchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/config"
	embeddingutils "github.com/papercomputeco/lurker/pkg/embeddings/utils"
	"github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/search"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
	"github.com/papercomputeco/lurker/pkg/utils"
)

var (
	rankStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	subredditStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type searchCommander struct {
	query     string
	subreddit string
	topK      int
	quiet     bool

	remote    bool
	apiTarget string

	sqlitePath      string
	provider        string
	embeddingTarget string
	model           string

	debug  bool
	logger *zap.Logger
}

const searchLongDesc string = `Search collected posts by meaning.

The query is embedded and ranked against every stored post embedding by
cosine similarity. By default the search runs locally against the SQLite
database; pass --remote to query a running lurker API server instead.

Use --quiet to output only post ids, one per line. This is useful for
piping into other commands.

Example:
  lurker search "CRM frustration"
  lurker search "sales tool alternatives" --subreddit sales
  lurker search "manual data entry" --top 3
  lurker search "workflow automation" --remote --api-target http://localhost:8081
  lurker search "quota pressure" --quiet`

const searchShortDesc string = "Search collected posts"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
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

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Storage.SQLitePath
			}
			if !cmd.Flags().Changed("top") && cfg.Search.TopK > 0 {
				cmder.topK = int(cfg.Search.TopK)
			}
			if !cmd.Flags().Changed("provider") {
				cmder.provider = cfg.Embedding.Provider
			}
			if !cmd.Flags().Changed("embedding-target") {
				cmder.embeddingTarget = cfg.Embedding.Target
			}
			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Embedding.Model
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.subreddit, "subreddit", "s", "", "Restrict results to one subreddit")
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", search.DefaultTopK, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only post ids, one per line (for piping)")
	cmd.Flags().BoolVar(&cmder.remote, "remote", false, "Query a running lurker API server instead of the local database")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Lurker API server URL")
	cmd.Flags().StringVar(&cmder.sqlitePath, "sqlite", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.provider, "provider", defaults.Embedding.Provider, "Embedding provider")
	cmd.Flags().StringVar(&cmder.embeddingTarget, "embedding-target", defaults.Embedding.Target, "Embedding service URL")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Embedding.Model, "Embedding model")

	return cmd
}

func (c *searchCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	var (
		output *search.Output
		err    error
	)
	if c.remote {
		output, err = SearchAPI(c.apiTarget, c.query, c.subreddit, c.topK)
	} else {
		output, err = c.searchLocal(ctx)
	}
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Println(result.Post.ID)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Search results for:"),
		subredditStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, result := range output.Results {
		c.printResult(i+1, result)
	}

	return nil
}

func (c *searchCommander) searchLocal(ctx context.Context) (*search.Output, error) {
	sqlitePath, err := sqlitepath.ResolveSQLitePath(strings.TrimSpace(c.sqlitePath))
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(sqlite.Config{Path: sqlitePath, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.provider,
		TargetURL:    c.embeddingTarget,
		Model:        c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	searcher, err := search.New(search.Config{
		Store:    store,
		Embedder: embedder,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}

	output, err := searcher.Search(ctx, c.query, search.Options{
		Subreddit: c.subreddit,
		TopK:      c.topK,
	})
	if err != nil {
		return nil, err
	}

	return &output, nil
}

func (c *searchCommander) printResult(rank int, result search.Result) {
	post := result.Post

	fmt.Printf("  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.3f", result.Score)),
		subredditStyle.Render("r/"+post.Subreddit),
	)

	fmt.Printf("  %s\n", titleStyle.Render(utils.Truncate(post.Title, 80)))

	if preview := strings.TrimSpace(post.Content); preview != "" {
		preview = strings.ReplaceAll(preview, "\n", " ")
		fmt.Printf("  %s\n", previewStyle.Render(utils.Truncate(preview, 120)))
	}

	fmt.Printf("  %s\n\n", dimStyle.Render(fmt.Sprintf(
		"%d points, %d comments  %s",
		post.Score, post.NumComments, permalinkURL(post),
	)))
}

func permalinkURL(post reddit.Post) string {
	if strings.HasPrefix(post.Permalink, "/") {
		return "https://reddit.com" + post.Permalink
	}
	return post.Permalink
}

// SearchAPI queries a running lurker API server and returns the parsed output.
func SearchAPI(apiTarget, query, subreddit string, topK int) (*search.Output, error) {
	searchURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	searchURL.Path = "/v1/search"
	q := searchURL.Query()
	q.Set("query", query)
	if subreddit != "" {
		q.Set("subreddit", subreddit)
	}
	q.Set("top_k", strconv.Itoa(topK))
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lurker API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var output search.Output
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &output, nil
}
