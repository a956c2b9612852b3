// Package repository holds the tally stores: the persistent SQLite store and
// an in-memory treap store with the same contract.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ben/internal/domain/model"
	"github.com/okian/ben/pkg/metrics"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store provides read/write access to the tally state.
type Store interface {
	// Increment creates surname with count 1 or adds exactly 1 to its count,
	// atomically with respect to concurrent callers. surname must already be
	// canonical; anything else fails with ErrInvalidRecord.
	Increment(ctx context.Context, surname string) error

	// Records returns every record ordered by count desc, surname asc.
	Records(ctx context.Context) ([]model.GuessRecord, error)

	// Count returns the number of distinct surnames.
	Count(ctx context.Context) (int, error)

	// Replace drops every record and loads records in their place as one
	// unit. It is meant for the batch importer only.
	Replace(ctx context.Context, records []model.GuessRecord) error

	// Ping performs a trivial read to check the store is usable.
	Ping(ctx context.Context) error

	Close() error
}

// Open creates the store selected by backend. path is only used by the
// SQLite backend.
func Open(ctx context.Context, backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(ctx, path, opts...)
	case BackendMemory:
		return NewTreapStore(ctx, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// validateRecords checks a bulk load before it touches any state.
func validateRecords(records []model.GuessRecord) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if !r.Valid() {
			return fmt.Errorf("%w: %q count=%d", ErrInvalidRecord, r.Surname, r.Count)
		}
		if _, dup := seen[r.Surname]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRecord, r.Surname)
		}
		seen[r.Surname] = struct{}{}
	}
	return nil
}

// observe records an operation's latency and outcome. Use with defer and a
// named error result.
func observe(op string, start time.Time, err *error) {
	metrics.ObserveStore(op, start, *err)
}
