// Package initcmder provides the init command for initializing a local .lurker
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/lurker/pkg/config"
)

const (
	dirName = ".lurker"
)

const initLongDesc string = `Initialize a new .lurker/ directory in the current working directory.

Creates a local .lurker/ directory that takes precedence over the default
~/.lurker/ directory for sweep state, storage, configuration, and other
lurker operations, and writes a config.toml with default values.

This is useful for maintaining separate lurker state per project or directory.

Use --preset to start from a named storage preset (local, postgres,
ephemeral) or from a config.toml served at an http(s) URL. Re-running init
with a preset overwrites the existing config.toml.

Examples:
  lurker init
  lurker init --preset local
  lurker init --preset postgres
  lurker init --preset https://example.com/team-config.toml`

const initShortDesc string = "Initialize a local .lurker/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Storage preset name or config.toml URL")

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, statErr := os.Stat(dir)
	alreadyInitialized := statErr == nil && info.IsDir()

	// Plain re-init keeps the existing config untouched; a preset is the
	// explicit request to overwrite it.
	if alreadyInitialized && c.preset == "" {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .lurker directory: %w", err)
	}

	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if alreadyInitialized {
		fmt.Printf("Updated config in %s\n", dir)
		return nil
	}

	fmt.Printf("Initialized .lurker directory: %s\n", dir)
	return nil
}

func (c *initCommander) resolveConfig() (*config.Config, error) {
	if c.preset == "" {
		return config.NewDefaultConfig(), nil
	}

	if strings.HasPrefix(c.preset, "http://") || strings.HasPrefix(c.preset, "https://") {
		return fetchRemoteConfig(c.preset)
	}

	return config.PresetConfig(c.preset)
}

// fetchRemoteConfig downloads a config.toml from a URL and parses it.
func fetchRemoteConfig(rawURL string) (*config.Config, error) {
	resp, err := http.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
