// package store persists the merged catalog.
//
// Three backends share the [Store] contract: a JSON file (the default), a SQLite table and a Redis list.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// Backend names accepted by [Open] and the catalog.store setting.
const (
	JSON   = "json"
	SQLite = "sqlite"
	Redis  = "redis"
)

// Store reads and replaces the whole catalog.
type Store interface {
	// Read returns the catalog in stored order, or an empty list when nothing is stored yet.
	Read(ctx context.Context) ([]models.MusicRecord, error)
	// Write replaces the stored catalog with records.
	Write(ctx context.Context, records []models.MusicRecord) error
	// Location describes where the catalog lives, for messages.
	Location() string
	Close() error
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{JSON, SQLite, Redis}
}

// Open builds the backend selected by cfg.Catalog.Store.
func Open(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Catalog.Store))
	logger = shared.WithLogger(logger, "store", backend)

	switch backend {
	case "", JSON:
		return NewJSONStore(cfg.Catalog.Path, logger), nil
	case SQLite:
		return OpenSQLiteStore(ctx, cfg.Database, logger)
	case Redis:
		return OpenRedisStore(ctx, cfg.Redis, logger)
	default:
		return nil, shared.ConfigError(fmt.Sprintf("unknown catalog store %q (want one of %s)", cfg.Catalog.Store, strings.Join(Backends(), ", ")), nil)
	}
}
