// Package statuscmder provides the status command for displaying the local
// collection state.
package statuscmder

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/config"
	"github.com/papercomputeco/lurker/pkg/dotdir"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

const statusLongDesc string = `Show the local collection state.

Displays post, comment and embedding counts from the SQLite database,
broken down per subreddit, plus the outcome of the most recent sweep if
one has run.

Examples:
  lurker status
  lurker status --sqlite ./lurker.db`

const statusShortDesc string = "Show collection state"

type statusCommander struct {
	sqlitePath string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
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
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *statusCommander) run(ctx context.Context) error {
	sqlitePath, err := sqlitepath.ResolveSQLitePath(strings.TrimSpace(c.sqlitePath))
	if err != nil {
		fmt.Printf("  %s No database found. Run lurker fetch or lurker seed first.\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	store, err := sqlite.NewStore(sqlite.Config{Path: sqlitePath})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	posts, err := store.CountPosts(ctx, "")
	if err != nil {
		return fmt.Errorf("counting posts: %w", err)
	}

	comments, err := store.CountComments(ctx)
	if err != nil {
		return fmt.Errorf("counting comments: %w", err)
	}

	embeddings, err := store.CountEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("counting embeddings: %w", err)
	}

	missing, err := store.PostsWithoutEmbeddings(ctx, "")
	if err != nil {
		return fmt.Errorf("finding unembedded posts: %w", err)
	}

	bySubreddit, err := store.SubredditCounts(ctx)
	if err != nil {
		return fmt.Errorf("counting per subreddit: %w", err)
	}

	fmt.Printf("\n  %s %s %s\n",
		cliui.KeyStyle.Render("Database:   "),
		cliui.ValueStyle.Render(sqlitePath),
		cliui.DimStyle.Render("("+fileSize(sqlitePath)+")"),
	)
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Posts:      "),
		cliui.NameStyle.Render(strconv.Itoa(posts)),
	)

	names := make([]string, 0, len(bySubreddit))
	for name := range bySubreddit {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("    %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%-14s", "r/"+name)),
			cliui.ValueStyle.Render(strconv.Itoa(bySubreddit[name])),
		)
	}

	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Comments:   "),
		cliui.ValueStyle.Render(strconv.Itoa(comments)),
	)
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Embeddings: "),
		cliui.ValueStyle.Render(strconv.Itoa(embeddings)),
	)

	if len(missing) > 0 {
		fmt.Printf("  %s %s %s\n",
			cliui.KeyStyle.Render("Unembedded: "),
			cliui.WarnStyle.Render(strconv.Itoa(len(missing))),
			cliui.DimStyle.Render("(run lurker embed)"),
		)
	} else {
		fmt.Printf("  %s %s\n",
			cliui.KeyStyle.Render("Unembedded: "),
			cliui.ValueStyle.Render("0"),
		)
	}

	return c.printSweepState()
}

func (c *statusCommander) printSweepState() error {
	manager := dotdir.NewManager()

	state, err := manager.LoadSweepState("")
	if err != nil {
		return fmt.Errorf("loading sweep state: %w", err)
	}

	if state == nil {
		fmt.Printf("\n  %s No sweep has run yet.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	took := state.CompletedAt.Sub(state.StartedAt)
	fmt.Printf("\n  %s %s %s\n",
		cliui.KeyStyle.Render("Last sweep: "),
		cliui.HashStyle.Render(state.RunID),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, took %s)",
			state.CompletedAt.Local().Format("2006-01-02 15:04"),
			cliui.FormatDuration(took),
		)),
	)
	fmt.Printf("    %s %s\n",
		cliui.KeyStyle.Render("Collected: "),
		cliui.ValueStyle.Render(fmt.Sprintf("%d posts, %d comments",
			state.PostsCollected, state.CommentsCollected)),
	)
	fmt.Printf("    %s %s\n",
		cliui.KeyStyle.Render("Subreddits:"),
		cliui.ValueStyle.Render(strings.Join(state.Subreddits, ", ")),
	)
	fmt.Printf("    %s %s\n",
		cliui.KeyStyle.Render("Keywords:  "),
		cliui.ValueStyle.Render(strings.Join(state.Keywords, ", ")),
	)
	if state.ReportPath != "" {
		fmt.Printf("    %s %s\n",
			cliui.KeyStyle.Render("Report:    "),
			cliui.DimStyle.Render(state.ReportPath),
		)
	}

	fmt.Println()
	return nil
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "size unknown"
	}
	return formatBytes(info.Size())
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
