package store

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/repositories"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// SQLiteStore keeps the catalog in the records table of the application database.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	records *repositories.RecordRepository
	logger  *log.Logger
}

// OpenSQLiteStore opens the configured database and applies pending migrations.
func OpenSQLiteStore(ctx context.Context, cfg shared.DatabaseConfig, logger *log.Logger) (*SQLiteStore, error) {
	db, err := shared.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db, cfg.Path, logger), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB, path string, logger *log.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:      db,
		path:    path,
		records: repositories.NewRecordRepository(db),
		logger:  logger,
	}
}

// DB exposes the connection so run history can share it.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Location() string { return "sqlite:" + s.path }

func (s *SQLiteStore) Read(ctx context.Context) ([]models.MusicRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("read catalog", "records", len(records))
	return records, nil
}

func (s *SQLiteStore) Write(ctx context.Context, records []models.MusicRecord) error {
	if err := s.records.ReplaceAll(ctx, records); err != nil {
		return err
	}
	s.logger.Debug("wrote catalog", "records", len(records))
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
