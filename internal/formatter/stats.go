package formatter

import (
	"cmp"
	"slices"

	"github.com/desertthunder/music-exporter/internal/models"
)

// AuthorCount is the number of catalog records credited to one author.
type AuthorCount struct {
	Author string
	Count  int
}

// Stats summarizes a catalog for `catalog stats`.
type Stats struct {
	Records          int
	Authors          int
	TopAuthors       []AuthorCount
	MissingURL       int
	MissingThumbnail int
	MissingDate      int
	MissingAlbum     int
}

// Summarize counts records per author and missing optional fields.
//
// TopAuthors holds at most top entries, most records first and ties by name. A top of zero or less keeps every author.
func Summarize(records []models.MusicRecord, top int) Stats {
	stats := Stats{Records: len(records)}
	counts := make(map[string]int)

	for _, rec := range records {
		counts[rec.Author]++
		if rec.URL == nil {
			stats.MissingURL++
		}
		if rec.Thumbnail == nil {
			stats.MissingThumbnail++
		}
		if rec.Date == nil {
			stats.MissingDate++
		}
		if rec.Album == nil {
			stats.MissingAlbum++
		}
	}

	stats.Authors = len(counts)
	authors := make([]AuthorCount, 0, len(counts))
	for author, n := range counts {
		authors = append(authors, AuthorCount{Author: author, Count: n})
	}
	slices.SortFunc(authors, func(a, b AuthorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Author, b.Author)
	})

	if top > 0 && len(authors) > top {
		authors = authors[:top]
	}
	stats.TopAuthors = authors

	return stats
}
