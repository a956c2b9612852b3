package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/ben/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes a complete load run: health check, leaderboard snapshot,
// concurrent submission, second snapshot and verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := getLeaderboard(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("initial snapshot failed: %w", err)
	}

	guesses := generateGuesses(ctx, cfg, stats)
	results := submitGuesses(ctx, cfg, guesses, stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("submission interrupted: %w", err)
	}
	if stats.Failed > 0 {
		logger.Get().Warn(ctx, "some submissions failed; counts may not match", logger.Int("failed", stats.Failed))
	}

	after, err := getLeaderboard(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("final snapshot failed: %w", err)
	}

	accepted, outcomeErr := verifyOutcomes(ctx, guesses, results, stats)
	boardErr := verifyLeaderboard(ctx, before, after, accepted)

	if cfg.OutputFile != "" {
		if err := saveGuessesToFile(ctx, cfg.OutputFile, guesses); err != nil {
			logger.Get().Warn(ctx, "failed to save guesses to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if outcomeErr != nil {
		return stats, outcomeErr
	}
	if boardErr != nil {
		return stats, boardErr
	}

	logger.Get().Info(ctx, "load run completed successfully")
	return stats, nil
}

// saveGuessesToFile writes the generated guesses as a JSON array.
func saveGuessesToFile(ctx context.Context, filename string, guesses []Guess) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(guesses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guesses: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "guesses saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64

	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
