package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/model"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: count DESC, then surname ASC. "less" means ranks earlier, so an
// in-order traversal yields the leaderboard from most to least guessed.
// Priorities are random, which keeps the expected depth logarithmic.

type node struct {
	surname string
	count   int64
	prio    uint64
	left    *node
	right   *node
	size    int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aCount, aName) should appear before (bCount, bName).
func less(aCount int64, aName string, bCount int64, bName string) bool {
	if aCount != bCount {
		return aCount > bCount
	}
	return aName < bName
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, surname string, count int64, prio uint64) *node {
	if n == nil {
		return &node{surname: surname, count: count, prio: prio, size: 1}
	}
	if less(count, surname, n.count, n.surname) {
		n.left = insert(n.left, surname, count, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, surname, count, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, surname string, count int64) *node {
	if n == nil {
		return nil
	}
	switch {
	case count == n.count && surname == n.surname:
		// Rotate the higher-priority child up until n becomes a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, surname, count)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, surname, count)
		}
	case less(count, surname, n.count, n.surname):
		n.left = deleteNode(n.left, surname, count)
	default:
		n.right = deleteNode(n.right, surname, count)
	}
	fix(n)
	return n
}

// collect appends every node in rank order.
func collect(n *node, out *[]model.GuessRecord) {
	if n == nil {
		return
	}
	collect(n.left, out)
	*out = append(*out, model.GuessRecord{Surname: n.surname, Count: n.count})
	collect(n.right, out)
}

// TreapStore keeps the tally in memory. A single RWMutex serializes writers,
// so the read-modify-write in Increment can never lose an update.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	counts map[string]int64
	rng    *rand.Rand // guarded by mu (write lock)
	closed bool
}

// NewTreapStore constructs an empty in-memory store.
func NewTreapStore(_ context.Context, opts ...Option) *TreapStore {
	s := newSettings(opts)
	return &TreapStore{
		counts: make(map[string]int64),
		rng:    s.rng,
	}
}

// Increment implements Store.Increment in O(log n) expected time.
func (s *TreapStore) Increment(ctx context.Context, surname string) (err error) {
	defer observe("increment", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !guess.Valid(surname) {
		return fmt.Errorf("%w: %q", ErrInvalidRecord, surname)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	old, ok := s.counts[surname]
	if ok {
		s.root = deleteNode(s.root, surname, old)
	}
	s.counts[surname] = old + 1
	s.root = insert(s.root, surname, old+1, s.rng.Uint64())
	return nil
}

// Records returns every record in rank order.
func (s *TreapStore) Records(ctx context.Context) (out []model.GuessRecord, err error) {
	defer observe("records", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	out = make([]model.GuessRecord, 0, nsize(s.root))
	collect(s.root, &out)
	return out, nil
}

// Count returns the number of distinct surnames.
func (s *TreapStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.counts), nil
}

// Replace swaps the whole tally for records.
func (s *TreapStore) Replace(ctx context.Context, records []model.GuessRecord) (err error) {
	defer observe("replace", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.root = nil
	s.counts = make(map[string]int64, len(records))
	for _, r := range records {
		s.counts[r.Surname] = r.Count
		s.root = insert(s.root, r.Surname, r.Count, s.rng.Uint64())
	}
	return nil
}

// Ping reports ErrClosed once the store has been closed.
func (s *TreapStore) Ping(ctx context.Context) error {
	_, err := s.Count(ctx)
	return err
}

// Close marks the store unusable. It is safe to call more than once.
func (s *TreapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
