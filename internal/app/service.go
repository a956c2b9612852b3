// Package service ties the guess rule, the tally store and the audit sink
// together behind the operations the HTTP layer needs.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ben/internal/adapters/audit"
	"github.com/okian/ben/internal/adapters/repository"
	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/tally"
	"github.com/okian/ben/internal/domain/types"
	"github.com/okian/ben/pkg/logger"
	"github.com/okian/ben/pkg/metrics"
)

const auditDrainTimeout = 5 * time.Second

// Service implements the API dependencies for the guessing game.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	audit audit.Sink
	now   func() time.Time

	// State
	started   bool
	startedAt time.Time
	accepted  atomic.Int64
	rejected  atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Without WithStore it keeps the tally in memory;
// without WithAuditSink nothing is audited.
func New(opts ...Option) *Service {
	s := &Service{
		audit: audit.Discard,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewTreapStore(context.Background())
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start starts the audit writer. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.audit.Start(ctx)
	s.started = true
	s.startedAt = s.now()

	if lb, err := s.leaderboard(ctx); err == nil {
		s.logger.Info(ctx, "guess service started",
			logger.Int("variations", lb.TotalVariations),
			logger.Int64("total_guesses", lb.TotalCount),
		)
	}
	return nil
}

// Stop drains the audit sink and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditDrainTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping guess service...")
	if err := s.audit.Close(ctx); err != nil {
		s.logger.Error(ctx, "failed to close audit sink", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "failed to close store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "guess service stopped")
}

// Submit validates raw and, if it is accepted, counts it and audits it. It
// returns the canonical spelling. A rejection is returned as an error
// wrapping guess.ErrRejected; nothing is stored or audited in that case.
func (s *Service) Submit(ctx context.Context, raw, clientIP string) (string, error) {
	canonical, err := guess.Normalize(raw)
	if err != nil {
		s.rejected.Add(1)
		metrics.RecordRejected(string(guess.ReasonOf(err)))
		s.logger.Debug(ctx, "guess rejected",
			logger.String("client_ip", clientIP),
			logger.String("reason", string(guess.ReasonOf(err))),
		)
		return "", err
	}

	if err := s.store.Increment(ctx, canonical); err != nil {
		s.logger.Error(ctx, "failed to record guess",
			logger.String("guess", canonical),
			logger.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.accepted.Add(1)
	metrics.RecordAccepted()

	// The guess is already counted; an audit failure is logged, not returned.
	if err := s.audit.Record(ctx, audit.NewEntry(s.now(), clientIP, canonical)); err != nil {
		s.logger.Error(ctx, "failed to audit guess",
			logger.String("guess", canonical),
			logger.Error(err),
		)
	}

	s.logger.Info(ctx, "guess submitted",
		logger.String("client_ip", clientIP),
		logger.String("guess", canonical),
	)
	return canonical, nil
}

// Leaderboard returns every distinct guess ranked by count, with totals and
// percentages computed from the same read.
func (s *Service) Leaderboard(ctx context.Context) (types.Leaderboard, error) {
	lb, err := s.leaderboard(ctx)
	if err != nil {
		return types.Leaderboard{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return lb, nil
}

func (s *Service) leaderboard(ctx context.Context) (types.Leaderboard, error) {
	records, err := s.store.Records(ctx)
	if err != nil {
		return types.Leaderboard{}, err
	}
	lb := tally.Build(records)
	metrics.UpdateLeaderboard(lb.TotalVariations, lb.TotalCount)
	return lb, nil
}

// Health performs a trivial storage read.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"accepted": s.accepted.Load(),
		"rejected": s.rejected.Load(),
	}

	if s.started {
		stats["uptime_seconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["variations"] = n
		}
	}
	return stats
}
