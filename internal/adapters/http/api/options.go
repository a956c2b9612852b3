package api

import "github.com/okian/ben/pkg/logger"

type options struct {
	trustProxy bool
	logger     logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*options)

// WithTrustProxy makes the client address come from X-Forwarded-For.
func WithTrustProxy(trust bool) Option {
	return func(o *options) {
		o.trustProxy = trust
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
