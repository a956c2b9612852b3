package audit

import "errors"

// Sentinel kinds for audit errors.
var (
	ErrClosed = errors.New("audit sink closed")
)
