// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
)

// Storage backends accepted in Config.Store.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// Store selects the tally backend: sqlite or memory.
	Store string `koanf:"store"`

	// DatabasePath is the SQLite file; ":memory:" keeps it in process.
	DatabasePath string `koanf:"database_path"`

	// AuditLogPath is the append-only audit file. Empty disables auditing.
	AuditLogPath string `koanf:"audit_log_path"`

	// AuditQueueSize bounds the number of audit entries waiting for the writer.
	AuditQueueSize int `koanf:"audit_queue_size"`

	// TrustProxy makes the first X-Forwarded-For entry the client address.
	TrustProxy bool `koanf:"trust_proxy"`
}

// New returns a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":5000",
		Store:          StoreSQLite,
		DatabasePath:   "data/ben.db",
		AuditLogPath:   "logs/audit.log",
		AuditQueueSize: 1024,
		TrustProxy:     true,
	}
}
