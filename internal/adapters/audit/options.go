package audit

import "github.com/okian/ben/pkg/logger"

// Option applies a configuration option to a FileSink.
type Option func(*FileSink)

// WithQueueSize sets how many entries may wait for the writer. Zero makes
// every Record write synchronously.
func WithQueueSize(size int) Option {
	return func(s *FileSink) {
		if size >= 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the sink.
func WithLogger(l logger.Logger) Option {
	return func(s *FileSink) {
		if l != nil {
			s.logger = l
		}
	}
}
