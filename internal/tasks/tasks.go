// package tasks implements the catalog export: fetching saved tracks from each platform and merging them into the catalog.
//
// The core abstraction is ExportEngine, which sequences platform authorization and pagination, then deduplicates,
// sorts and stores the result. Runs emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"context"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/platforms"
)

// CatalogStore is the read/write contract the engine needs from catalog storage.
type CatalogStore interface {
	// Read returns the stored catalog in order, or an empty list when there is none yet.
	Read(ctx context.Context) ([]models.MusicRecord, error)
	// Write replaces the stored catalog.
	Write(ctx context.Context, records []models.MusicRecord) error
}

// SourceFactory builds the pager for a platform. It is called once per platform per run.
type SourceFactory func(kind platforms.Kind) (platforms.Pager, error)

// RunRecorder persists run history. Implemented by repositories.RunRepository.
type RunRecorder interface {
	Create(ctx context.Context, run *models.Run) error
	Finish(ctx context.Context, run *models.Run) error
}

// ExportOptions toggles the post-processing steps. Both are on by default.
type ExportOptions struct {
	Dedup bool
	Sort  bool
}

// DefaultExportOptions deduplicates and sorts.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Dedup: true, Sort: true}
}

// ExportResult summarises a successful run.
type ExportResult struct {
	RunID      string               // Run history id, empty when runs are not recorded
	Platforms  []string             // Platforms in processing order
	Existing   int                  // Records read from the store
	Fetched    map[string]int       // Records fetched per platform
	Kept       int                  // Records written
	Duplicates int                  // Records dropped by dedup
	Records    []models.MusicRecord // Final catalog
	Dropped    []models.MusicRecord // Records dropped by dedup, in encounter order
}

// TotalFetched is the number of records fetched across all platforms.
func (r *ExportResult) TotalFetched() int {
	total := 0
	for _, n := range r.Fetched {
		total += n
	}
	return total
}

func (r *ExportResult) counts() models.RunCounts {
	return models.RunCounts{
		Existing:   r.Existing,
		Fetched:    r.TotalFetched(),
		Kept:       r.Kept,
		Duplicates: r.Duplicates,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
