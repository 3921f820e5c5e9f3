package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/music-exporter/internal/tasks"
)

// ProgressPrinter writes export progress updates as they arrive, one line per update.
//
// Page updates are only shown with Verbose set; the authorizing line already names the platform.
type ProgressPrinter struct {
	w       io.Writer
	Verbose bool
}

// NewProgressPrinter writes to w.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{w: w}
}

// Consume prints updates until the channel is closed.
func (p *ProgressPrinter) Consume(updates <-chan tasks.ProgressUpdate) {
	for u := range updates {
		p.Print(u)
	}
}

// Print renders a single update.
func (p *ProgressPrinter) Print(u tasks.ProgressUpdate) {
	if line := p.render(u); line != "" {
		fmt.Fprintln(p.w, line)
	}
}

func (p *ProgressPrinter) render(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.Paginating:
		if !p.Verbose {
			return ""
		}
		return styles.Help(u.Message)
	case tasks.Done:
		return styles.Success(u.Message)
	case tasks.Failed:
		return styles.Error(u.Message)
	case tasks.Authorizing:
		return styles.ok.UnsetBold().Render(u.Message)
	default:
		return u.Message
	}
}

// ExportSummary renders a finished export: records fetched per platform, kept and dropped.
func ExportSummary(result *tasks.ExportResult, location string) string {
	var b strings.Builder

	b.WriteString(styles.Success("✓ Export complete"))
	b.WriteString("\n\n")

	t := newTable(styles, "Platform", "Fetched")
	for _, name := range result.Platforms {
		t.Row(name, fmt.Sprintf("%d", result.Fetched[name]))
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Existing: %d\n", result.Existing)
	fmt.Fprintf(&b, "Fetched:  %d\n", result.TotalFetched())
	fmt.Fprintf(&b, "Kept:     %d\n", result.Kept)
	fmt.Fprintf(&b, "Dropped:  %d\n", result.Duplicates)
	if location != "" {
		fmt.Fprintf(&b, "Catalog:  %s\n", location)
	}
	if result.RunID != "" {
		fmt.Fprintf(&b, "Run:      %s\n", result.RunID)
	}

	if len(result.Dropped) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Warning(fmt.Sprintf("Dropped %d duplicate records:", len(result.Dropped))))
		shown := result.Dropped[:min(len(result.Dropped), 10)]
		for _, rec := range shown {
			fmt.Fprintf(&b, "\n  • %s - %s", rec.Author, rec.Title)
		}
		if rest := len(result.Dropped) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "\n  %s", styles.Help(fmt.Sprintf("and %d more", rest)))
		}
		b.WriteString("\n")
	}

	return b.String()
}
