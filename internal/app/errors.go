package service

import "errors"

// ErrStorage marks failures of the tally store, as opposed to rejected input.
var ErrStorage = errors.New("storage failure")
