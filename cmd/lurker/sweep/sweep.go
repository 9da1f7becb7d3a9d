// Package sweepcmder provides the sweep command: a full research collection
// run across the configured subreddits and keywords.
package sweepcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/collector"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/credentials"
	"github.com/papercomputeco/lurker/pkg/dotdir"
	eventstreamutils "github.com/papercomputeco/lurker/pkg/eventstream/utils"
	"github.com/papercomputeco/lurker/pkg/logger"
	redditapi "github.com/papercomputeco/lurker/pkg/reddit/api"
	"github.com/papercomputeco/lurker/pkg/report"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

const sweepLongDesc string = `Run a keyword sweep across the configured subreddits.

Every (subreddit, keyword) pair is searched; fresh posts are stored with
their top comments, de-duplicated by post id across the whole run. A
timestamped markdown collection report is written afterwards and the sweep
outcome is saved so lurker status can show it.

Subreddits and keywords come from collection.subreddits and
collection.keywords in the config; flags override them for one run.

Examples:
  lurker sweep
  lurker sweep --subreddits sales,SDRs --keywords "CRM frustrating"
  lurker sweep --posts-per-keyword 50 --comments-per-post 2
  lurker sweep --show`

const sweepShortDesc string = "Run a collection sweep"

type sweepCommander struct {
	subreddits      []string
	keywords        []string
	postsPerKeyword uint
	commentsPerPost uint
	sort            string

	sqlitePath string
	userAgent  string
	reportDir  string
	show       bool

	eventsProvider string
	eventsBrokers  []string
	eventsTopic    string

	debug  bool
	logger *zap.Logger
}

func NewSweepCmd() *cobra.Command {
	cmder := &sweepCommander{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: sweepShortDesc,
		Long:  sweepLongDesc,
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

			if !cmd.Flags().Changed("subreddits") {
				cmder.subreddits = cfg.Collection.Subreddits
			}
			if !cmd.Flags().Changed("keywords") {
				cmder.keywords = cfg.Collection.Keywords
			}
			if !cmd.Flags().Changed("posts-per-keyword") && cfg.Collection.PostsPerKeyword > 0 {
				cmder.postsPerKeyword = cfg.Collection.PostsPerKeyword
			}
			if !cmd.Flags().Changed("comments-per-post") {
				cmder.commentsPerPost = cfg.Collection.CommentsPerPost
			}
			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Storage.SQLitePath
			}
			if !cmd.Flags().Changed("user-agent") {
				cmder.userAgent = cfg.Reddit.UserAgent
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
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringSliceVarP(&cmder.subreddits, "subreddits", "s", nil, "Subreddits to sweep (overrides config)")
	cmd.Flags().StringSliceVarP(&cmder.keywords, "keywords", "k", nil, "Keywords to search (overrides config)")
	cmd.Flags().UintVar(&cmder.postsPerKeyword, "posts-per-keyword", defaults.Collection.PostsPerKeyword, "Posts per (subreddit, keyword) pair")
	cmd.Flags().UintVar(&cmder.commentsPerPost, "comments-per-post", defaults.Collection.CommentsPerPost, "Top comments stored per post (0 disables)")
	cmd.Flags().StringVar(&cmder.sort, "sort", collector.DefaultSort, "Search result sort order")
	cmd.Flags().StringVar(&cmder.sqlitePath, "sqlite", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.userAgent, "user-agent", defaults.Reddit.UserAgent, "User agent sent to Reddit")
	cmd.Flags().StringVar(&cmder.reportDir, "report-dir", "", "Directory for the collection report (defaults to the .lurker directory)")
	cmd.Flags().BoolVar(&cmder.show, "show", false, "Render the collection report after the sweep")

	return cmd
}

func (c *sweepCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if len(c.subreddits) == 0 {
		return fmt.Errorf("no subreddits configured: set collection.subreddits or pass --subreddits")
	}
	if len(c.keywords) == 0 {
		return fmt.Errorf("no keywords configured: set collection.keywords or pass --keywords")
	}

	creds := credentials.Load()
	if err := creds.Validate(); err != nil {
		return err
	}

	client, err := redditapi.NewClient(redditapi.Config{
		Credentials: creds,
		UserAgent:   creds.ResolveUserAgent(c.userAgent),
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	sqlitePath := c.resolveSQLitePath()
	store, err := sqlite.NewStore(sqlite.Config{Path: sqlitePath, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	publisher, err := eventstreamutils.NewPublisher(eventstreamutils.NewPublisherOpts{
		ProviderType: c.eventsProvider,
		Brokers:      c.eventsBrokers,
		Topic:        c.eventsTopic,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	col, err := collector.New(collector.Config{
		Source:    client,
		Store:     store,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}

	var stats *collector.Stats
	stepMsg := fmt.Sprintf("Sweeping %d subreddits x %d keywords", len(c.subreddits), len(c.keywords))
	if err := cliui.Step(os.Stdout, stepMsg, func() error {
		var sweepErr error
		stats, sweepErr = col.Sweep(ctx, collector.Options{
			Subreddits:      c.subreddits,
			Keywords:        c.keywords,
			PostsPerKeyword: int(c.postsPerKeyword),
			CommentsPerPost: int(c.commentsPerPost),
			Sort:            c.sort,
		})
		return sweepErr
	}); err != nil {
		return err
	}

	generatedAt := time.Now()
	reportPath, err := c.writeReport(stats, generatedAt)
	if err != nil {
		return err
	}

	c.saveSweepState(stats, reportPath)

	fmt.Printf("\n  %s Collected %s posts %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(stats.TotalPosts)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d comments, %d duplicates skipped)",
			stats.TotalComments, stats.DuplicatesSkipped)),
	)
	if len(stats.Errors) > 0 {
		fmt.Printf("  %s %s\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render(fmt.Sprintf("%d search errors, listed in the report", len(stats.Errors))),
		)
	}
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Report:"),
		cliui.DimStyle.Render(reportPath),
	)

	if c.show {
		// RenderMarkdown falls back to the raw markdown on render errors.
		rendered, _ := cliui.RenderMarkdown(report.Render(stats, generatedAt))
		fmt.Println(rendered)
	}

	return nil
}

func (c *sweepCommander) writeReport(stats *collector.Stats, generatedAt time.Time) (string, error) {
	reportDir := c.reportDir
	if reportDir == "" {
		dir, err := dotdir.NewManager().Target("")
		if err != nil {
			return "", fmt.Errorf("resolving report directory: %w", err)
		}
		reportDir = filepath.Join(dir, "reports")
	}

	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	return report.Write(stats, reportDir, generatedAt)
}

// saveSweepState records the run for lurker status. The sweep itself
// succeeded by the time this runs, so failures only warn.
func (c *sweepCommander) saveSweepState(stats *collector.Stats, reportPath string) {
	state := &dotdir.SweepState{
		RunID:             stats.RunID,
		StartedAt:         stats.StartedAt,
		CompletedAt:       stats.StartedAt.Add(stats.Duration),
		Subreddits:        stats.Subreddits,
		Keywords:          stats.Keywords,
		PostsCollected:    stats.TotalPosts,
		CommentsCollected: stats.TotalComments,
		ReportPath:        reportPath,
	}

	if err := dotdir.NewManager().SaveSweepState(state, ""); err != nil {
		c.logger.Warn("failed to save sweep state", zap.Error(err))
	}
}

func (c *sweepCommander) resolveSQLitePath() string {
	if path, err := sqlitepath.ResolveSQLitePath(strings.TrimSpace(c.sqlitePath)); err == nil {
		return path
	}

	return "lurker.db"
}
