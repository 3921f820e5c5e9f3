package main

import (
	"context"
	"time"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/repositories"
	"github.com/desertthunder/music-exporter/internal/shared"
	"github.com/desertthunder/music-exporter/internal/ui"
	"github.com/urfave/cli/v3"
)

// runJSON is the --json shape of a recorded run.
type runJSON struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	Platforms  []string   `json:"platforms"`
	Status     string     `json:"status"`
	Existing   int        `json:"existing"`
	Fetched    int        `json:"fetched"`
	Kept       int        `json:"kept"`
	Duplicates int        `json:"duplicates"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func newRunJSON(run *models.Run) runJSON {
	counts := run.Counts()
	return runJSON{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		Platforms:  run.Platforms(),
		Status:     string(run.Status()),
		Existing:   counts.Existing,
		Fetched:    counts.Fetched,
		Kept:       counts.Kept,
		Duplicates: counts.Duplicates,
		Error:      run.ErrorMessage(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

// History lists recorded export runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, newRunJSON(run))
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs. Pass --record to export or set database.record_runs.\n")
	}

	return r.writePlain("%s\n", ui.HistoryTable(runs))
}
