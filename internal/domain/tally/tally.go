// Package tally turns raw guess records into a ranked leaderboard.
package tally

import (
	"math"
	"slices"

	"github.com/okian/ben/internal/domain/model"
	"github.com/okian/ben/internal/domain/types"
)

const (
	percentScale     = 100
	percentPrecision = 100 // two decimal places
)

// Less reports whether a ranks before b: higher count first, then surname
// ascending.
func Less(a, b model.GuessRecord) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Surname < b.Surname
}

// Compare is the three-way form of Less, for slices.SortFunc.
func Compare(a, b model.GuessRecord) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Percentage returns count/total*100 rounded to two decimals, or 0 when
// total is not positive.
func Percentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(count) / float64(total) * percentScale
	return math.Round(p*percentPrecision) / percentPrecision
}

// Build ranks records and derives percentages and totals. The input slice is
// not modified. The result always has a non-nil Entries slice.
func Build(records []model.GuessRecord) types.Leaderboard {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, Compare)

	var total int64
	for _, r := range sorted {
		total += r.Count
	}

	entries := make([]types.Entry, len(sorted))
	for i, r := range sorted {
		entries[i] = types.Entry{
			Surname:    r.Surname,
			Count:      r.Count,
			Percentage: Percentage(r.Count, total),
		}
	}

	return types.Leaderboard{
		Entries:         entries,
		TotalVariations: len(sorted),
		TotalCount:      total,
	}
}
