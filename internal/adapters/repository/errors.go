package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidRecord   = errors.New("invalid guess record")
	ErrDuplicateRecord = errors.New("duplicate guess record")
	ErrUnknownBackend  = errors.New("unknown store backend")
	ErrClosed          = errors.New("store closed")
)
