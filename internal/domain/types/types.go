// Package types contains common types used across the application
package types

// Entry is one leaderboard row.
type Entry struct {
	Surname    string  `json:"surname"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Leaderboard is a ranked, point-in-time read of every tally.
type Leaderboard struct {
	Entries         []Entry `json:"entries"`
	TotalVariations int     `json:"total_variations"`
	TotalCount      int64   `json:"total_count"`
}
