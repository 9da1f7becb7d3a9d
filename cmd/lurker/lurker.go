// Package lurkercmder
package lurkercmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/lurker/cmd/lurker/config"
	embedcmder "github.com/papercomputeco/lurker/cmd/lurker/embed"
	fetchcmder "github.com/papercomputeco/lurker/cmd/lurker/fetch"
	initcmder "github.com/papercomputeco/lurker/cmd/lurker/init"
	searchcmder "github.com/papercomputeco/lurker/cmd/lurker/search"
	seedcmder "github.com/papercomputeco/lurker/cmd/lurker/seed"
	servecmder "github.com/papercomputeco/lurker/cmd/lurker/serve"
	setupcmder "github.com/papercomputeco/lurker/cmd/lurker/setup"
	statuscmder "github.com/papercomputeco/lurker/cmd/lurker/status"
	sweepcmder "github.com/papercomputeco/lurker/cmd/lurker/sweep"
	versioncmder "github.com/papercomputeco/lurker/cmd/lurker/version"
)

const lurkerLongDesc string = `Lurker collects Reddit posts, embeds them, and makes them searchable.

A typical research flow:
  lurker init              Set up the .lurker/ directory and config
  lurker sweep             Collect posts for the configured subreddits and keywords
  lurker embed             Generate embeddings for collected posts
  lurker search <query>    Rank collected posts against a query
  lurker serve             Run the HTTP API with the MCP endpoint

Try it without Reddit credentials:
  lurker seed --demo       Load a small synthetic corpus
  lurker embed --sqlite lurker.demo.sqlite
  lurker search "CRM frustration"`

const lurkerShortDesc string = "Lurker - Reddit topic research"

func NewLurkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lurker",
		Short: lurkerShortDesc,
		Long:  lurkerLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .lurker/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(setupcmder.NewSetupCmd())
	cmd.AddCommand(fetchcmder.NewFetchCmd())
	cmd.AddCommand(sweepcmder.NewSweepCmd())
	cmd.AddCommand(embedcmder.NewEmbedCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
