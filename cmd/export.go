package main

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/platforms"
	"github.com/desertthunder/music-exporter/internal/repositories"
	"github.com/desertthunder/music-exporter/internal/shared"
	"github.com/desertthunder/music-exporter/internal/store"
	"github.com/desertthunder/music-exporter/internal/tasks"
	"github.com/desertthunder/music-exporter/internal/ui"
	"github.com/urfave/cli/v3"
)

// Export runs the export pipeline for the requested platforms and prints a summary.
//
// Credentials are checked for every platform before anything is fetched, so a missing secret never costs a browser round trip.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	kinds, err := parseKinds(cmd.StringSlice("platform"))
	if err != nil {
		return err
	}

	r.applyStoreFlags(cmd)
	r.applyExportFlags(cmd)

	if err := r.checkCredentials(kinds, cmd.Bool("prompt")); err != nil {
		return err
	}

	st, err := r.openStore(ctx, r.config)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer st.Close()

	opts := tasks.ExportOptions{
		Dedup: r.config.Catalog.RemoveDuplicates,
		Sort:  r.config.Catalog.Sort,
	}
	engine := tasks.NewExportEngine(st, r.sourceFactory(), opts, r.logger)

	if r.config.Database.RecordRuns {
		db, closeDB, err := r.historyDB(ctx, st)
		if err != nil {
			return err
		}
		defer closeDB()
		engine.WithRecorder(repositories.NewRunRepository(db))
	}

	printer := ui.NewProgressPrinter(r.output)
	printer.Verbose = cmd.Bool("verbose") || r.logger.GetLevel() <= log.DebugLevel

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		printer.Consume(progress)
		close(done)
	}()

	result, err := engine.Run(ctx, kinds, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	return r.writePlainln("%s", ui.ExportSummary(result, st.Location()))
}

// parseKinds resolves platform names, ignoring repeats but keeping the caller's order.
func parseKinds(names []string) ([]platforms.Kind, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one --platform", shared.ErrMissingArgument)
	}

	kinds := make([]platforms.Kind, 0, len(names))
	for _, name := range names {
		kind, err := platforms.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func (r *Runner) applyStoreFlags(cmd *cli.Command) {
	if path := cmd.String("music-file"); path != "" {
		r.config.Catalog.Path = path
	}
	if backend := cmd.String("store"); backend != "" {
		r.config.Catalog.Store = backend
	}
}

func (r *Runner) applyExportFlags(cmd *cli.Command) {
	cfg := r.config

	if id := cmd.String("youtube-playlist-id"); id != "" {
		cfg.Credentials.YouTube.PlaylistID = id
	}
	if cmd.IsSet("remove-duplicates") {
		cfg.Catalog.RemoveDuplicates = cmd.Bool("remove-duplicates")
	}
	if cmd.IsSet("sort") {
		cfg.Catalog.Sort = cmd.Bool("sort")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.Bool("open") {
		cfg.Server.OpenBrowser = true
	}
	if cmd.Bool("record") {
		cfg.Database.RecordRuns = true
	}
}

// checkCredentials fails on the first missing credential, or asks for it when prompt is set.
func (r *Runner) checkCredentials(kinds []platforms.Kind, prompt bool) error {
	var prompter *shared.Prompter
	if prompt {
		prompter = shared.NewPrompter(r.input, r.output)
	}

	for _, kind := range kinds {
		if prompter != nil {
			if err := r.config.FillMissing(kind.String(), prompter); err != nil {
				return err
			}
		}
		if err := r.config.RequireCredentials(kind.String()); err != nil {
			return err
		}
	}
	return nil
}

// historyDB reuses the SQLite store's connection when there is one.
func (r *Runner) historyDB(ctx context.Context, st store.Store) (*sql.DB, func(), error) {
	if s, ok := st.(*store.SQLiteStore); ok {
		return s.DB(), func() {}, nil
	}

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return db, func() { db.Close() }, nil
}
