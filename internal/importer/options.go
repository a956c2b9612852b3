package importer

import "github.com/okian/ben/pkg/logger"

// DefaultCharset is the encoding of the archived results page.
const DefaultCharset = "windows-1252"

type settings struct {
	charset string
	logger  logger.Logger
}

// Option applies a configuration option to Parse.
type Option func(*settings)

// WithCharset sets the input encoding by its WHATWG label, e.g. "utf-8".
func WithCharset(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.charset = name
		}
	}
}

// WithLogger sets a custom logger for per-row diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
