// Package model contains domain models passed between layers.
package model

import "github.com/okian/ben/internal/domain/guess"

// GuessRecord is one row of the tally: a canonical surname and the number of
// accepted submissions that normalized to it.
type GuessRecord struct {
	Surname string // canonical guess, unique key
	Count   int64  // always >= 1 once stored
}

// Valid reports whether r may be written to a store: the surname must be a
// canonical guess and the count positive.
func (r GuessRecord) Valid() bool {
	return r.Count >= 1 && guess.Valid(r.Surname)
}
