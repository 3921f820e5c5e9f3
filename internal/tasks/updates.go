package tasks

import (
	"fmt"

	"github.com/desertthunder/music-exporter/internal/platforms"
)

// ProgressUpdate represents a progress event during an export run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase    Phase  // Run phase
	Platform string // Platform being processed, empty outside per-platform phases
	Step     int    // Current step number within phase
	Total    int    // Total steps in this phase, 0 when unknown
	Message  string // Human-readable message for display
	Data     any    // Optional phase-specific data
}

// Phase is a state of the export state machine.
type Phase int

const (
	Idle Phase = iota
	Authorizing
	Paginating
	Merging
	Sorting
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Authorizing:
		return "authorizing"
	case Paginating:
		return "paginating"
	case Merging:
		return "merging"
	case Sorting:
		return "sorting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func loadingCatalogUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Idle,
		Message: "Reading existing catalog...",
	}
}

func authorizingUpdate(step, total int, kind platforms.Kind) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Authorizing,
		Platform: kind.String(),
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Authorizing %s...", step, total, kind),
	}
}

func pageUpdate(kind platforms.Kind, page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Paginating,
		Platform: kind.String(),
		Step:     page,
		Message:  fmt.Sprintf("%s: page %d, %d tracks", kind, page, fetched),
		Data:     fetched,
	}
}

func mergingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Merging,
		Total:   total,
		Message: fmt.Sprintf("Merging %d records...", total),
	}
}

func sortingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Sorting,
		Total:   total,
		Message: fmt.Sprintf("Sorting %d records...", total),
	}
}

func doneUpdate(result *ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Total:   len(result.Records),
		Message: fmt.Sprintf("✓ %d records kept, %d duplicates dropped", result.Kept, result.Duplicates),
		Data:    result,
	}
}

func failedUpdate(kind string, err error) ProgressUpdate {
	msg := fmt.Sprintf("✗ %v", err)
	if kind != "" {
		msg = fmt.Sprintf("✗ %s: %v", kind, err)
	}
	return ProgressUpdate{
		Phase:    Failed,
		Platform: kind,
		Message:  msg,
	}
}
