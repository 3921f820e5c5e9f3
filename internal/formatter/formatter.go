// package formatter provides functions to export the catalog to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// Format names an export format accepted by `catalog export --format`.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
)

// Formats lists every supported format in help-text order.
func Formats() []Format {
	return []Format{CSV, Markdown, Text, JSON}
}

// ParseFormat resolves a format name, accepting "md" and "txt" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// ExportToCSV converts records to CSV format with columns: Author, Title, Album, Date, URL, Thumbnail
func ExportToCSV(records []models.MusicRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Author", "Title", "Album", "Date", "URL", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Author,
			rec.Title,
			models.Value(rec.Album),
			models.Value(rec.Date),
			models.Value(rec.URL),
			models.Value(rec.Thumbnail),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts records to a Markdown list under the given heading.
//
// Titles link to the record URL when one is present.
func ExportToMarkdown(records []models.MusicRecord, heading string) ([]byte, error) {
	var buf bytes.Buffer

	if heading == "" {
		heading = "Music Catalog"
	}
	fmt.Fprintf(&buf, "# %s\n\n", heading)
	fmt.Fprintf(&buf, "**Records**: %d\n\n", len(records))

	buf.WriteString("## Records\n\n")
	for i, rec := range records {
		title := escapeMarkdown(rec.Title)
		if rec.URL != nil {
			title = fmt.Sprintf("[%s](%s)", title, *rec.URL)
		}

		albumPart := ""
		if rec.Album != nil {
			albumPart = fmt.Sprintf(" (%s)", escapeMarkdown(*rec.Album))
		}

		datePart := ""
		if rec.Date != nil {
			datePart = fmt.Sprintf(" [%s]", *rec.Date)
		}

		fmt.Fprintf(&buf, "%d. %s - %s%s%s\n", i+1, escapeMarkdown(rec.Author), title, albumPart, datePart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts records to plain text format
func ExportToText(records []models.MusicRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Records: %d\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, rec.Author, rec.Title)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders records the way the JSON store writes them.
func ExportToJSON(records []models.MusicRecord) ([]byte, error) {
	if records == nil {
		records = []models.MusicRecord{}
	}
	return shared.MarshalJSON(records, true)
}

// Render converts records to the given format.
func Render(format Format, records []models.MusicRecord) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(records)
	case Markdown:
		return ExportToMarkdown(records, "")
	case Text:
		return ExportToText(records)
	case JSON:
		return ExportToJSON(records)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders records and writes them to path.
//
// Defaults to catalog{ext} in the working directory and creates parent directories as needed.
func WriteExport(format Format, records []models.MusicRecord, path string) (string, error) {
	if path == "" {
		path = "catalog" + format.Extension()
	}

	data, err := Render(format, records)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
