// Package fetchcmder provides the fetch command for pulling posts from a
// subreddit listing into local storage.
package fetchcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/credentials"
	"github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/reddit"
	redditapi "github.com/papercomputeco/lurker/pkg/reddit/api"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

const fetchLongDesc string = `Fetch posts from a subreddit listing and store them.

Posts are upserted by id, so re-fetching the same listing refreshes scores
and comment counts without duplicating rows. The keyword filter matches
post titles case-insensitively; the timespan filter bounds post age (top
listings are bounded server-side, every other sort client-side).

Examples:
  lurker fetch -s sales
  lurker fetch -s sales -t week --sort top -l 50
  lurker fetch -s SDRs -k "cold call" --sort new
  lurker fetch -s sales --sqlite ./lurker.db`

const fetchShortDesc string = "Fetch posts from a subreddit"

type fetchCommander struct {
	subreddit  string
	timespan   string
	keyword    string
	limit      int
	sort       string
	sqlitePath string
	userAgent  string

	debug  bool
	logger *zap.Logger
}

func NewFetchCmd() *cobra.Command {
	cmder := &fetchCommander{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: fetchShortDesc,
		Long:  fetchLongDesc,
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

			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Storage.SQLitePath
			}
			if !cmd.Flags().Changed("user-agent") {
				cmder.userAgent = cfg.Reddit.UserAgent
			}
			if !cmd.Flags().Changed("timespan") {
				cmder.timespan = cfg.Collection.Timespan
			}
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
	cmd.Flags().StringVarP(&cmder.subreddit, "subreddit", "s", "", "Subreddit to fetch (without r/)")
	cmd.Flags().StringVarP(&cmder.timespan, "timespan", "t", defaults.Collection.Timespan, "Post age bound (day, week, month, year, all)")
	cmd.Flags().StringVarP(&cmder.keyword, "keyword", "k", "", "Keep only posts whose title contains this keyword")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "l", 100, "Maximum posts to fetch")
	cmd.Flags().StringVar(&cmder.sort, "sort", "hot", "Listing sort (hot, new, top, rising)")
	cmd.Flags().StringVar(&cmder.sqlitePath, "sqlite", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.userAgent, "user-agent", defaults.Reddit.UserAgent, "User agent sent to Reddit")

	_ = cmd.MarkFlagRequired("subreddit")

	return cmd
}

func (c *fetchCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

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
		return fmt.Errorf("creating reddit client: %w", err)
	}
	defer client.Close()

	store, err := sqlite.NewStore(sqlite.Config{
		Path:   c.resolveSQLitePath(),
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var posts []reddit.Post
	if err := cliui.Step(os.Stdout, fmt.Sprintf("Fetching r/%s (%s)", c.subreddit, c.sort), func() error {
		var fetchErr error
		posts, fetchErr = client.Fetch(ctx, reddit.FetchOptions{
			Subreddit: c.subreddit,
			Sort:      reddit.Sort(c.sort),
			Timespan:  reddit.Timespan(c.timespan),
			Keyword:   c.keyword,
			Limit:     c.limit,
		})
		return fetchErr
	}); err != nil {
		return err
	}

	inserted, err := store.InsertPosts(ctx, posts)
	if err != nil {
		return fmt.Errorf("storing posts: %w", err)
	}

	fmt.Printf("\n  %s Stored %s posts %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(inserted)),
		cliui.DimStyle.Render(fmt.Sprintf("from r/%s", c.subreddit)),
	)
	return nil
}

func (c *fetchCommander) resolveSQLitePath() string {
	path, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err == nil {
		return path
	}
	return "lurker.db"
}
