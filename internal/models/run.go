package models

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus is the terminal or in-flight state of an export run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunFailed  RunStatus = "failed"
)

// Run records one export: which platforms were pulled and what the merge produced.
type Run struct {
	id         string
	sequence   int
	platforms  []string
	status     RunStatus
	existing   int
	fetched    int
	kept       int
	duplicates int
	errMessage string
	startedAt  time.Time
	finishedAt *time.Time
}

// NewRun starts a run for the given platforms.
func NewRun(platforms []string) *Run {
	return &Run{
		platforms: platforms,
		status:    RunRunning,
		startedAt: time.Now().UTC(),
	}
}

// RestoreRun rebuilds a persisted run. Used by repositories when scanning rows.
func RestoreRun(id string, sequence int, platforms []string, status RunStatus, counts RunCounts, errMessage string, startedAt time.Time, finishedAt *time.Time) *Run {
	return &Run{
		id:         id,
		sequence:   sequence,
		platforms:  platforms,
		status:     status,
		existing:   counts.Existing,
		fetched:    counts.Fetched,
		kept:       counts.Kept,
		duplicates: counts.Duplicates,
		errMessage: errMessage,
		startedAt:  startedAt,
		finishedAt: finishedAt,
	}
}

// RunCounts summarises the record totals of a run.
type RunCounts struct {
	Existing   int
	Fetched    int
	Kept       int
	Duplicates int
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Sequence() int          { return r.sequence }
func (r *Run) Platforms() []string    { return r.platforms }
func (r *Run) Status() RunStatus      { return r.status }
func (r *Run) ErrorMessage() string   { return r.errMessage }
func (r *Run) CreatedAt() time.Time   { return r.startedAt }
func (r *Run) StartedAt() time.Time   { return r.startedAt }
func (r *Run) FinishedAt() *time.Time { return r.finishedAt }

func (r *Run) Counts() RunCounts {
	return RunCounts{Existing: r.existing, Fetched: r.fetched, Kept: r.kept, Duplicates: r.duplicates}
}

func (r *Run) SetID(id string)     { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }

// Finish moves the run to a terminal state. A nil err marks it done.
func (r *Run) Finish(counts RunCounts, err error) {
	now := time.Now().UTC()
	r.finishedAt = &now
	r.existing = counts.Existing
	r.fetched = counts.Fetched
	r.kept = counts.Kept
	r.duplicates = counts.Duplicates
	if err != nil {
		r.status = RunFailed
		r.errMessage = err.Error()
		return
	}
	r.status = RunDone
}

// Duration is the wall time of a finished run, zero while running.
func (r *Run) Duration() time.Duration {
	if r.finishedAt == nil {
		return 0
	}
	return r.finishedAt.Sub(r.startedAt)
}

func (r *Run) Validate() error {
	if len(r.platforms) == 0 {
		return fmt.Errorf("run has no platforms")
	}
	switch r.status {
	case RunRunning, RunDone, RunFailed:
	default:
		return fmt.Errorf("unknown run status %q", r.status)
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("run has no start time")
	}
	return nil
}

func (r *Run) String() string {
	return fmt.Sprintf("#%d %s [%s]", r.sequence, strings.Join(r.platforms, ","), r.status)
}
