// package matching finds catalog records that are probably the same song under slightly different spellings.
//
// Dedup only merges exact normalization keys. This package reports the near misses, such as "Beyonce" and
// "Beyoncé" or a stray suffix, so they can be reviewed by hand.
package matching

import (
	"cmp"
	"slices"
	"strings"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/xrash/smetrics"
)

// DefaultThreshold is the minimum score reported by [NearDuplicates] when no other is given.
const DefaultThreshold = 85

// Pair is two records whose score reached the threshold. IndexA < IndexB, both positions in the input.
type Pair struct {
	A, B           models.MusicRecord
	IndexA, IndexB int
	Score          int
}

// Similarity returns a 0-100 score from the byte edit distance of the lowercased, trimmed strings.
func Similarity(a, b string) int {
	a, b = normalize(a), normalize(b)
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 100
	}

	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return max(0, 100-distance*100/maxLen)
}

// Score weighs the title over the author.
func Score(a, b models.MusicRecord) int {
	return (Similarity(a.Title, b.Title)*60 + Similarity(a.Author, b.Author)*40) / 100
}

// NearDuplicates returns the pairs of records with different normalization keys scoring at least threshold,
// best first. Records sharing a key are exact duplicates and left to dedup.
func NearDuplicates(records []models.MusicRecord, threshold int) []Pair {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var pairs []Pair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if models.SameSong(records[i], records[j]) {
				continue
			}
			if score := Score(records[i], records[j]); score >= threshold {
				pairs = append(pairs, Pair{A: records[i], B: records[j], IndexA: i, IndexB: j, Score: score})
			}
		}
	}

	slices.SortStableFunc(pairs, func(x, y Pair) int {
		return cmp.Compare(y.Score, x.Score)
	})
	return pairs
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
