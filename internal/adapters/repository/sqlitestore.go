package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/model"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-process SQLite database.
const MemoryPath = ":memory:"

const dirPermission = 0o750

// SQLiteStore persists the tally in a single SQLite table.
//
// The pool is capped at one connection: SQLite admits one writer at a time
// anyway, and a single connection keeps ":memory:" databases coherent.
// Every call borrows the connection for one statement or transaction and
// returns it on all exit paths.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := newSettings(opts)

	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, dirPermission); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds())
	if _, err := db.ExecContext(ctx, pragma); err != nil {
		_ = db.Close() // Close error less important than PRAGMA error
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// InitSchema creates the guesses table if it does not exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Increment is a single upsert statement, so concurrent increments of the
// same surname are serialized by SQLite itself.
func (s *SQLiteStore) Increment(ctx context.Context, surname string) (err error) {
	defer observe("increment", time.Now(), &err)

	if s.closed.Load() {
		return ErrClosed
	}
	if !guess.Valid(surname) {
		return fmt.Errorf("%w: %q", ErrInvalidRecord, surname)
	}
	if _, err := s.db.ExecContext(ctx, upsertGuessSQL, surname); err != nil {
		return fmt.Errorf("failed to increment %q: %w", surname, err)
	}
	return nil
}

// Records reads every row in one statement, so the rows and any totals
// derived from them come from the same read.
func (s *SQLiteStore) Records(ctx context.Context) (out []model.GuessRecord, err error) {
	defer observe("records", time.Now(), &err)

	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, selectGuessesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query guesses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = []model.GuessRecord{}
	for rows.Next() {
		var r model.GuessRecord
		if err := rows.Scan(&r.Surname, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan guess: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guesses: %w", err)
	}
	return out, nil
}

// Count returns the number of distinct surnames.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, countGuessesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count guesses: %w", err)
	}
	return n, nil
}

// Replace clears the table and bulk-inserts records in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, records []model.GuessRecord) (err error) {
	defer observe("replace", time.Now(), &err)

	if s.closed.Load() {
		return ErrClosed
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteGuessesSQL); err != nil {
		return fmt.Errorf("failed to clear guesses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertGuessSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Surname, r.Count); err != nil {
			return fmt.Errorf("failed to insert %q: %w", r.Surname, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Ping runs the same trivial read the health check relies on.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, pingSQL).Scan(&n)
	if errors.Is(err, sql.ErrConnDone) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the underlying database. Later calls return nil.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
