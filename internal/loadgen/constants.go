package loadgen

import "time"

// HTTP status code constants.
const (
	StatusOK    = 200
	StatusFound = 302
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	progressInterval     = time.Second
)
