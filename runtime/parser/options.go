package parser

import (
	"log/slog"
	"time"

	"github.com/opal-lang/pysyntax/core/version"
)

// Option configures a parse.
type Option func(*config)

type config struct {
	version   version.Version
	logger    *slog.Logger
	telemetry bool
}

// WithVersion sets the target language version. Syntax newer than the
// target still parses but produces a VersionWarning. The zero Version
// accepts everything.
func WithVersion(v version.Version) Option {
	return func(c *config) {
		c.version = v
	}
}

// WithLogger enables rule tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTelemetry records counts and timing in Result.Telemetry.
func WithTelemetry() Option {
	return func(c *config) {
		c.telemetry = true
	}
}

// Telemetry holds parser metrics. It is nil unless WithTelemetry is given.
type Telemetry struct {
	ParseTime  time.Duration
	TokenCount int
	EventCount int
	ErrorCount int
	MaxDepth   int // deepest nesting of open nodes
}
