package tasks

import (
	"slices"

	"github.com/desertthunder/music-exporter/internal/models"
)

// DedupResult is the output of [Dedup]: the kept records in first-seen order and the dropped ones.
type DedupResult struct {
	Records    []models.MusicRecord
	Duplicates []models.MusicRecord
}

// Dedup keeps the first record of every normalization key and drops the rest.
//
// Only title and author take part in the key; records differing in any other field are still duplicates.
func Dedup(records []models.MusicRecord) DedupResult {
	seen := make(map[models.Key]struct{}, len(records))
	result := DedupResult{Records: make([]models.MusicRecord, 0, len(records))}

	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			result.Duplicates = append(result.Duplicates, r)
			continue
		}
		seen[key] = struct{}{}
		result.Records = append(result.Records, r)
	}

	return result
}

// Merge concatenates the existing catalog with the fetched batches, existing records first.
func Merge(existing []models.MusicRecord, batches ...[]models.MusicRecord) []models.MusicRecord {
	n := len(existing)
	for _, b := range batches {
		n += len(b)
	}

	merged := make([]models.MusicRecord, 0, n)
	merged = append(merged, existing...)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return merged
}

// SortRecords orders records in place by [models.Compare].
func SortRecords(records []models.MusicRecord) {
	slices.SortStableFunc(records, models.Compare)
}
