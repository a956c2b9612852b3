package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/ben/internal/loadgen"
)

// Default configuration constants.
const (
	defaultSubmissions  = 2000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultInvalidRatio = 0.2
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:5000", "Base URL of the service")
		submissions = flag.Int("n", defaultSubmissions, "Number of guesses to submit")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		invalid     = flag.Float64("invalid", defaultInvalidRatio, "Share of guesses built to be rejected")
		seed        = flag.Uint64("seed", 0, "Generator seed, 0 for random")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Save the generated guesses as JSON")
		logFile     = flag.String("log", "", "Also write log output to this file")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closeLog, err := loadgen.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	cfg := &loadgen.Config{
		BaseURL:      *baseURL,
		Submissions:  *submissions,
		Workers:      max(*workers, 1),
		Timeout:      *timeout,
		InvalidRatio: *invalid,
		Seed:         *seed,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	_, err = loadgen.Run(ctx, cfg)
	cancel()
	_ = closeLog()
	if err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
