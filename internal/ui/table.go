package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/music-exporter/internal/formatter"
	"github.com/desertthunder/music-exporter/internal/matching"
	"github.com/desertthunder/music-exporter/internal/models"
)

// maxCellWidth caps free-text columns so long titles do not wrap the table.
const maxCellWidth = 48

func newTable(p *Palette, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.cell
		})
}

// CatalogTable renders records as a numbered table. A limit greater than zero shows only the first limit records.
func CatalogTable(records []models.MusicRecord, limit int) string {
	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	t := newTable(styles, "#", "Author", "Title", "Album", "Date")
	for i, rec := range shown {
		t.Row(
			strconv.Itoa(i+1),
			truncate(rec.Author, maxCellWidth),
			truncate(rec.Title, maxCellWidth),
			truncate(models.Value(rec.Album), maxCellWidth),
			models.Value(rec.Date),
		)
	}

	out := t.String()
	if len(shown) < len(records) {
		out += "\n" + styles.Help(fmt.Sprintf("showing %d of %d records", len(shown), len(records)))
	}
	return out
}

// HistoryTable renders recorded export runs, newest first as given.
func HistoryTable(runs []*models.Run) string {
	t := newTable(styles, "#", "ID", "Platforms", "Status", "Fetched", "Kept", "Dropped", "Started", "Took")
	for _, run := range runs {
		counts := run.Counts()

		took := "-"
		if run.FinishedAt() != nil {
			took = run.Duration().Round(time.Millisecond).String()
		}

		t.Row(
			strconv.Itoa(run.Sequence()),
			shortID(run.ID()),
			strings.Join(run.Platforms(), ", "),
			statusText(run.Status()),
			strconv.Itoa(counts.Fetched),
			strconv.Itoa(counts.Kept),
			strconv.Itoa(counts.Duplicates),
			run.StartedAt().Local().Format(time.DateTime),
			took,
		)
	}
	return t.String()
}

// StatsView renders catalog statistics followed by the top authors table.
func StatsView(stats formatter.Stats) string {
	var b strings.Builder

	b.WriteString(styles.Title("Catalog"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Records: %d\n", stats.Records)
	fmt.Fprintf(&b, "Authors: %d\n", stats.Authors)
	fmt.Fprintf(&b, "Missing url: %d, thumbnail: %d, date: %d, album: %d\n",
		stats.MissingURL, stats.MissingThumbnail, stats.MissingDate, stats.MissingAlbum)

	if len(stats.TopAuthors) > 0 {
		t := newTable(styles, "Author", "Records")
		for _, a := range stats.TopAuthors {
			t.Row(truncate(a.Author, maxCellWidth), strconv.Itoa(a.Count))
		}
		b.WriteString("\n")
		b.WriteString(t.String())
	}

	return b.String()
}

// NearDuplicatesTable renders the near-duplicate report. Positions are 1-based to match [CatalogTable].
func NearDuplicatesTable(pairs []matching.Pair) string {
	if len(pairs) == 0 {
		return styles.Success("No near-duplicates found")
	}

	t := newTable(styles, "Score", "#", "Record", "#", "Record")
	for _, p := range pairs {
		t.Row(
			strconv.Itoa(p.Score),
			strconv.Itoa(p.IndexA+1),
			truncate(describe(p.A), maxCellWidth),
			strconv.Itoa(p.IndexB+1),
			truncate(describe(p.B), maxCellWidth),
		)
	}
	return t.String()
}

func describe(rec models.MusicRecord) string {
	return rec.Author + " - " + rec.Title
}

func statusText(s models.RunStatus) string {
	switch s {
	case models.RunDone:
		return styles.Success(string(s))
	case models.RunFailed:
		return styles.Error(string(s))
	default:
		return styles.Warning(string(s))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// PlatformRow is one line of [PlatformTable].
type PlatformRow struct {
	Name   string
	Auth   string
	Status string
	Ready  bool
}

// PlatformTable renders supported platforms and whether their credentials are configured.
func PlatformTable(rows []PlatformRow) string {
	t := newTable(styles, "Platform", "Authorization", "Credentials")
	for _, row := range rows {
		status := styles.Warning(row.Status)
		if row.Ready {
			status = styles.Success(row.Status)
		}
		t.Row(row.Name, row.Auth, status)
	}
	return t.String()
}
