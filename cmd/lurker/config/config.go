// Package configcmder provides the config command for managing persistent
// lurker configuration stored in the .lurker/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lurker configuration.

Configuration is stored as config.toml in the .lurker/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_url,
  api.listen, client.api_target,
  reddit.user_agent,
  embedding.provider, embedding.target, embedding.model, embedding.workers,
  search.top_k, search.cache_size, search.cache_ttl,
  collection.subreddits, collection.keywords,
  collection.posts_per_keyword, collection.comments_per_post,
  collection.timespan,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  lurker config set <key> <value>    Set a configuration value
  lurker config get <key>            Get a configuration value
  lurker config list                 List all configuration values

Examples:
  lurker config set collection.subreddits sales,SDRs
  lurker config set embedding.model nomic-embed-text
  lurker config get collection.subreddits
  lurker config list`

const configShortDesc string = "Manage persistent lurker configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
