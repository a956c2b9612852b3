package loadgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/ben/internal/domain/model"
	"github.com/okian/ben/internal/domain/tally"
	"github.com/okian/ben/internal/domain/types"
	"github.com/okian/ben/pkg/logger"
)

// verifyOutcomes compares each server outcome with the locally computed
// canonical form and counts accepted submissions per canonical spelling.
func verifyOutcomes(ctx context.Context, guesses []Guess, results []result, stats *Stats) (map[string]int64, error) {
	accepted := make(map[string]int64)
	var errs []error

	for i, res := range results {
		g := guesses[i]
		switch res.outcome {
		case OutcomeAccepted:
			accepted[res.canonical]++
			if res.canonical != g.Canonical {
				stats.Mismatched++
				errs = append(errs, fmt.Errorf("guess %q accepted as %q, expected %q", g.Raw, res.canonical, g.Canonical))
			}
		case OutcomeRejected:
			if g.Canonical != "" {
				stats.Mismatched++
				errs = append(errs, fmt.Errorf("guess %q rejected, expected %q", g.Raw, g.Canonical))
			}
		}
	}

	if len(errs) > 0 {
		logger.Get().Error(ctx, "outcome mismatches", logger.Int("count", stats.Mismatched))
		return accepted, fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	return accepted, nil
}

// verifyLeaderboard checks that every accepted canonical grew by exactly its
// number of accepted submissions and that after is internally consistent.
// Concurrent traffic from other clients makes the growth check fail.
func verifyLeaderboard(ctx context.Context, before, after types.Leaderboard, accepted map[string]int64) error {
	logger.Get().Info(ctx, "verifying leaderboard",
		logger.Int("variations", after.TotalVariations),
		logger.Int64("total", after.TotalCount))

	var errs []error
	prev := counts(before)
	next := counts(after)

	var added int64
	for surname, n := range accepted {
		added += n
		if got := next[surname] - prev[surname]; got != n {
			errs = append(errs, fmt.Errorf("%s grew by %d, expected %d", surname, got, n))
		}
	}
	if got := after.TotalCount - before.TotalCount; got != added {
		errs = append(errs, fmt.Errorf("total grew by %d, expected %d", got, added))
	}

	errs = append(errs, checkConsistency(after)...)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	logger.Get().Info(ctx, "leaderboard verified")
	return nil
}

// checkConsistency validates ordering, totals and percentages of lb.
func checkConsistency(lb types.Leaderboard) []error {
	var errs []error

	if len(lb.Entries) != lb.TotalVariations {
		errs = append(errs, fmt.Errorf("%d entries, total_variations %d", len(lb.Entries), lb.TotalVariations))
	}

	var sum int64
	for i, e := range lb.Entries {
		sum += e.Count
		if i > 0 {
			p := lb.Entries[i-1]
			if !tally.Less(record(p), record(e)) {
				errs = append(errs, fmt.Errorf("%s ranked before %s", p.Surname, e.Surname))
			}
		}
		if want := tally.Percentage(e.Count, lb.TotalCount); e.Percentage != want {
			errs = append(errs, fmt.Errorf("%s percentage %.2f, expected %.2f", e.Surname, e.Percentage, want))
		}
	}
	if sum != lb.TotalCount {
		errs = append(errs, fmt.Errorf("counts sum to %d, total_count %d", sum, lb.TotalCount))
	}
	return errs
}

func record(e types.Entry) model.GuessRecord {
	return model.GuessRecord{Surname: e.Surname, Count: e.Count}
}

func counts(lb types.Leaderboard) map[string]int64 {
	m := make(map[string]int64, len(lb.Entries))
	for _, e := range lb.Entries {
		m[e.Surname] = e.Count
	}
	return m
}
