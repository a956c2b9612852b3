package loadgen

import "errors"

// Sentinel errors.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrVerification = errors.New("verification failed")
	ErrStatus       = errors.New("unexpected status")
)
