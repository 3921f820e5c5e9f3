package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/music-exporter/internal/models"
)

// RecordRepository keeps the catalog in the records table, one row per record in catalog order.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository with the given database connection
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ReplaceAll swaps the whole catalog for records in a single transaction.
func (r *RecordRepository) ReplaceAll(ctx context.Context, records []models.MusicRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (position, author, title, url, thumbnail, date, album)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx, i, rec.Author, rec.Title,
			nullable(rec.URL), nullable(rec.Thumbnail), nullable(rec.Date), nullable(rec.Album))
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	return nil
}

// List returns the catalog in stored order.
func (r *RecordRepository) List(ctx context.Context) ([]models.MusicRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT author, title, url, thumbnail, date, album
		FROM records
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []models.MusicRecord{}
	for rows.Next() {
		var (
			rec                         models.MusicRecord
			url, thumbnail, date, album sql.NullString
		)
		if err := rows.Scan(&rec.Author, &rec.Title, &url, &thumbnail, &date, &album); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.URL = optional(url)
		rec.Thumbnail = optional(thumbnail)
		rec.Date = optional(date)
		rec.Album = optional(album)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}
