package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Submissions  int           // Number of guesses to submit
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	InvalidRatio float64       // Share of guesses built to be rejected, 0..1
	Seed         uint64        // Seed for the guess generator; 0 picks one
	OutputFile   string        // Where to save the generated guesses; empty skips saving
	LogFile      string        // Additional log destination; empty logs to stdout only
	Verbose      bool          // Enable verbose logging
}

// Guess is one generated submission and the outcome the game must produce.
type Guess struct {
	ID        string `json:"id"`
	Raw       string `json:"raw"`
	Canonical string `json:"canonical,omitempty"` // empty when the guess must be rejected
}

// Outcome classifies the server's answer to one submission.
type Outcome int

// Submission outcomes.
const (
	OutcomeFailed Outcome = iota
	OutcomeAccepted
	OutcomeRejected
)

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Rejected   int
	Failed     int
	Mismatched int // server outcome differs from the local rule
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
