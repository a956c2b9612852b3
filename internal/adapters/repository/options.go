package repository

import (
	"math/rand/v2"
	"time"
)

const defaultBusyTimeout = 5 * time.Second

type settings struct {
	busyTimeout time.Duration
	rng         *rand.Rand
}

func newSettings(opts []Option) settings {
	s := settings{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithBusyTimeout sets how long SQLite waits on a locked database before
// failing a statement.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithSeed makes the treap priorities deterministic.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}
