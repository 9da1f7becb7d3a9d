// Package storageutils provides factory functions for creating stores.
package storageutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/storage/inmemory"
	"github.com/papercomputeco/lurker/pkg/storage/postgres"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

// NewStoreOpts holds the options for creating a store.
type NewStoreOpts struct {
	// DriverType selects the backend: "sqlite", "postgres" or "inmemory".
	DriverType string

	// Path is the database file path, used by the sqlite driver.
	Path string

	// ConnString is the connection string, used by the postgres driver.
	ConnString string

	// Logger is optional.
	Logger *zap.Logger
}

// NewStore creates a new store based on the given options.
func NewStore(ctx context.Context, opts NewStoreOpts) (storage.Store, error) {
	switch opts.DriverType {
	case "sqlite":
		return sqlite.NewStore(sqlite.Config{
			Path:   opts.Path,
			Logger: opts.Logger,
		})
	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{
			ConnString: opts.ConnString,
			Logger:     opts.Logger,
		})
	case "inmemory":
		return inmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.DriverType)
	}
}
