package guess

import (
	"errors"
	"fmt"
)

// ErrRejected is the sentinel kind for every inadmissible guess.
var ErrRejected = errors.New("guess rejected")

// Reason classifies why a guess was rejected.
type Reason string

// Rejection reasons. They are informational only; callers on the serving
// path treat all of them the same way.
const (
	ReasonNone         Reason = ""
	ReasonEmpty        Reason = "empty"
	ReasonTooShort     Reason = "too_short"
	ReasonTooLong      Reason = "too_long"
	ReasonWrongStart   Reason = "wrong_start"
	ReasonInvalidChars Reason = "invalid_chars"
)

// RejectionError reports a rejected token together with its reason.
type RejectionError struct {
	Token  string
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s (%q)", ErrRejected, e.Reason, e.Token)
}

// Unwrap lets errors.Is(err, ErrRejected) match.
func (e *RejectionError) Unwrap() error { return ErrRejected }

func reject(token string, reason Reason) error {
	return &RejectionError{Token: token, Reason: reason}
}

// ReasonOf extracts the rejection reason from err, or ReasonNone when err is
// not a rejection.
func ReasonOf(err error) Reason {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ReasonNone
}
