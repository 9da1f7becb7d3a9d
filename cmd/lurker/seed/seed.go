package seedcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/lurker/cmd/lurker/sqlitepath"
	"github.com/papercomputeco/lurker/pkg/cliui"
	"github.com/papercomputeco/lurker/pkg/demo"
)

const seedLongDesc string = `Seed demo posts into a SQLite database.

The demo corpus is a handful of synthetic r/sales and r/SDRs posts, enough
to try search and status without Reddit credentials.

Examples:
  lurker seed
  lurker seed --demo
  lurker seed --sqlite ./lurker.db
  lurker seed --overwrite`

const seedShortDesc string = "Seed demo posts"

type seedCommander struct {
	sqlitePath string
	demo       bool
	overwrite  bool
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVarP(&cmder.demo, "demo", "m", false, "Seed into the demo database path")
	cmd.Flags().BoolVarP(&cmder.overwrite, "overwrite", "f", false, "Overwrite database before seeding")

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	sqlitePath := c.resolveSQLitePath()

	var postCount, commentCount int
	if err := cliui.Step(os.Stdout, "Seeding demo data", func() error {
		var seedErr error
		postCount, commentCount, seedErr = demo.Seed(ctx, sqlitePath, c.overwrite)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Seeded %s posts %s into %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(postCount)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d comments)", commentCount)),
		cliui.DimStyle.Render(sqlitePath),
	)
	return nil
}

func (c *seedCommander) resolveSQLitePath() string {
	if strings.TrimSpace(c.sqlitePath) != "" {
		return c.sqlitePath
	}

	if c.demo {
		return demo.DemoSQLitePath
	}

	path, err := sqlitepath.ResolveSQLitePath("")
	if err == nil {
		return path
	}

	return "lurker.db"
}
