package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// JSONStore keeps the catalog as an indented JSON array in a single file.
type JSONStore struct {
	path   string
	logger *log.Logger
}

// NewJSONStore creates a store for the file at path. Nothing is touched until the first Read or Write.
func NewJSONStore(path string, logger *log.Logger) *JSONStore {
	return &JSONStore{path: path, logger: logger}
}

func (s *JSONStore) Location() string { return s.path }
func (s *JSONStore) Close() error     { return nil }

// Read decodes the catalog file. A missing file is created holding an empty array.
//
// Content that is not a JSON array of records is a [shared.ErrParse]; it is never treated as an empty catalog.
func (s *JSONStore) Read(ctx context.Context) ([]models.MusicRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("creating catalog file", "path", s.path)
		if err := s.Write(ctx, nil); err != nil {
			return nil, err
		}
		return []models.MusicRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.MusicRecord{}, nil
	}

	var records []models.MusicRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, shared.ParseError(fmt.Sprintf("catalog %s is not a list of records", s.path), err)
	}
	if records == nil {
		records = []models.MusicRecord{}
	}

	s.logger.Debug("read catalog", "path", s.path, "records", len(records))
	return records, nil
}

// Write replaces the file through a temporary sibling, so a failed write leaves the previous catalog intact.
func (s *JSONStore) Write(ctx context.Context, records []models.MusicRecord) error {
	if records == nil {
		records = []models.MusicRecord{}
	}

	data, err := shared.MarshalJSON(records, true)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace catalog %s: %w", s.path, err)
	}

	s.logger.Debug("wrote catalog", "path", s.path, "records", len(records))
	return nil
}
