package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/platforms"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// ExportEngine runs the export state machine:
//
//	Idle → (Authorizing → Paginating) per platform → Merging → Sorting → Done
//
// Any error moves to Failed and aborts the whole run. The store is only written on success.
type ExportEngine struct {
	store    CatalogStore
	sources  SourceFactory
	recorder RunRecorder
	opts     ExportOptions
	logger   *log.Logger
}

// NewExportEngine creates an engine reading and writing store and building platform clients with sources.
func NewExportEngine(store CatalogStore, sources SourceFactory, opts ExportOptions, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{store: store, sources: sources, opts: opts, logger: logger}
}

// WithRecorder enables run history. Recorder failures are logged and never fail a run.
func (e *ExportEngine) WithRecorder(r RunRecorder) *ExportEngine {
	e.recorder = r
	return e
}

// Run exports the given platforms, in order, into the catalog.
func (e *ExportEngine) Run(ctx context.Context, kinds []platforms.Kind, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: at least one platform is required", shared.ErrMissingArgument)
	}
	if e.store == nil || e.sources == nil {
		return nil, shared.ConfigError("export engine needs a store and a source factory", nil)
	}

	result := &ExportResult{Fetched: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		result.Platforms = append(result.Platforms, k.String())
	}

	run := e.startRun(ctx, result)
	err := e.run(ctx, kinds, result, progress)
	e.finishRun(ctx, run, result, err)

	if err != nil {
		return nil, err
	}
	sendProgress(progress, doneUpdate(result))
	return result, nil
}

func (e *ExportEngine) run(ctx context.Context, kinds []platforms.Kind, result *ExportResult, progress chan<- ProgressUpdate) error {
	sendProgress(progress, loadingCatalogUpdate())

	existing, err := e.store.Read(ctx)
	if err != nil {
		sendProgress(progress, failedUpdate("", err))
		return err
	}
	result.Existing = len(existing)
	e.logger.Info("loaded catalog", "records", len(existing))

	batches := make([][]models.MusicRecord, 0, len(kinds))
	for i, kind := range kinds {
		records, err := e.fetch(ctx, i+1, len(kinds), kind, progress)
		if err != nil {
			sendProgress(progress, failedUpdate(kind.String(), err))
			return err
		}
		result.Fetched[kind.String()] = len(records)
		batches = append(batches, records)
	}

	merged := Merge(existing, batches...)
	sendProgress(progress, mergingUpdate(len(merged)))

	if e.opts.Dedup {
		deduped := Dedup(merged)
		merged = deduped.Records
		result.Dropped = deduped.Duplicates
		result.Duplicates = len(deduped.Duplicates)
		e.logger.Info("removed duplicates", "kept", len(merged), "dropped", result.Duplicates)
	}

	if e.opts.Sort {
		sendProgress(progress, sortingUpdate(len(merged)))
		SortRecords(merged)
	}

	if err := e.store.Write(ctx, merged); err != nil {
		sendProgress(progress, failedUpdate("", err))
		return err
	}

	result.Records = merged
	result.Kept = len(merged)
	return nil
}

// fetch authorizes one platform and pages through all of its saved tracks.
func (e *ExportEngine) fetch(ctx context.Context, step, total int, kind platforms.Kind, progress chan<- ProgressUpdate) ([]models.MusicRecord, error) {
	logger := shared.WithLogger(e.logger, "platform", kind.String())

	source, err := e.sources(kind)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, authorizingUpdate(step, total, kind))
	if c, ok := source.(platforms.Client); ok {
		logger.Debug("authorizing", "style", platforms.Describe(c))
	}
	if err := source.Authorize(ctx); err != nil {
		return nil, err
	}

	records, err := platforms.FetchAll(ctx, source, func(page, fetched int) {
		sendProgress(progress, pageUpdate(kind, page, fetched))
		logger.Debug("fetched page", "page", page, "records", fetched)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("fetched saved tracks", "records", len(records))
	return records, nil
}

func (e *ExportEngine) startRun(ctx context.Context, result *ExportResult) *models.Run {
	if e.recorder == nil {
		return nil
	}

	run := models.NewRun(result.Platforms)
	if err := e.recorder.Create(ctx, run); err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return nil
	}

	result.RunID = run.ID()
	return run
}

// finishRun stores the outcome even when ctx was cancelled, so interrupted runs show up as failed.
func (e *ExportEngine) finishRun(ctx context.Context, run *models.Run, result *ExportResult, err error) {
	if run == nil {
		return
	}

	run.Finish(result.counts(), err)
	if ferr := e.recorder.Finish(context.WithoutCancel(ctx), run); ferr != nil {
		e.logger.Warn("failed to finish run record", "run", run.ID(), "error", ferr)
	}
}
