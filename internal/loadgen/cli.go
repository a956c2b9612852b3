package loadgen

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/ben/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned function closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var w io.Writer = os.Stdout
	closeFn := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}

	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`Ben Load Generator
==================

Submits generated guesses concurrently to a running server and verifies that
the leaderboard counted every accepted guess exactly once.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:5000")
  -n int
        Number of guesses to submit (default 2000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -invalid float
        Share of guesses built to be rejected (default 0.2)
  -seed uint
        Generator seed, 0 for random (default 0)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Save the generated guesses as JSON
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Run it against a server with no other traffic; concurrent visitors make the
count check fail.
`)
}
