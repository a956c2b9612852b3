package audit

import (
	"time"

	"github.com/google/uuid"
)

// ActionGuessSubmitted is the only action the game records.
const ActionGuessSubmitted = "guess_submitted"

// Entry is one line of the audit log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ClientIP  string    `json:"client_ip"`
	Guess     string    `json:"guess"`
	RequestID string    `json:"request_id"`
}

// NewEntry builds the entry for an accepted guess.
func NewEntry(now time.Time, clientIP, canonical string) Entry {
	return Entry{
		Timestamp: now.UTC(),
		Action:    ActionGuessSubmitted,
		ClientIP:  clientIP,
		Guess:     canonical,
		RequestID: uuid.NewString(),
	}
}
