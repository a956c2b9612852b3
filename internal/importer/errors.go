package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrCharset = errors.New("unsupported charset")
	ErrParse   = errors.New("failed to parse results page")
	ErrEmpty   = errors.New("no valid guesses found")
)
