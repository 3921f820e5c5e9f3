package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/music-exporter/internal/formatter"
	"github.com/desertthunder/music-exporter/internal/matching"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
	"github.com/desertthunder/music-exporter/internal/ui"
	"github.com/urfave/cli/v3"
)

// readCatalog opens the configured store, applying --music-file and --store, and reads every record.
func (r *Runner) readCatalog(ctx context.Context, cmd *cli.Command) ([]models.MusicRecord, string, error) {
	r.applyStoreFlags(cmd)

	st, err := r.openStore(ctx, r.config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer st.Close()

	records, err := st.Read(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read catalog: %w", err)
	}

	r.logger.Debug("catalog read", "location", st.Location(), "records", len(records))
	return records, st.Location(), nil
}

// CatalogList shows the catalog as a table, or as JSON with --json.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	records, location, err := r.readCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if cmd.Bool("json") {
		if limit > 0 && limit < len(records) {
			records = records[:limit]
		}
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		return r.writePlain("No records in %s\n", location)
	}

	return r.writePlain("%s\n", ui.CatalogTable(records, limit))
}

// CatalogStats prints record, author and missing field counts.
func (r *Runner) CatalogStats(ctx context.Context, cmd *cli.Command) error {
	records, _, err := r.readCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	stats := formatter.Summarize(records, cmd.Int("top"))
	return r.writePlain("%s\n", ui.StatsView(stats))
}

// CatalogExport renders the catalog to a file in the requested format.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	records, _, err := r.readCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(format, records, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "format", format, "path", path, "records", len(records))
	return r.writePlain("✓ Exported %d records to %s\n", len(records), path)
}

// CatalogCheck reports near-duplicates. It never changes the catalog.
func (r *Runner) CatalogCheck(ctx context.Context, cmd *cli.Command) error {
	threshold := cmd.Int("threshold")
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: threshold must be between 0 and 100, got %d", shared.ErrInvalidFlag, threshold)
	}

	records, _, err := r.readCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	pairs := matching.NearDuplicates(records, threshold)
	r.logger.Debug("near-duplicate check", "records", len(records), "pairs", len(pairs), "threshold", threshold)

	return r.writePlain("%s\n", ui.NearDuplicatesTable(pairs))
}
