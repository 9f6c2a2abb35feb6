package syntax

import (
	"log/slog"
	"time"

	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Option configures Parse.
type Option func(*config)

type config struct {
	version   version.Version
	logger    *slog.Logger
	telemetry bool
	cache     *NodeCache
}

// WithVersion sets the target language version for feature warnings.
func WithVersion(v version.Version) Option {
	return func(c *config) {
		c.version = v
	}
}

// WithLogger traces tokens and grammar rules at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTelemetry records phase timings in Tree.Telemetry.
func WithTelemetry() Option {
	return func(c *config) {
		c.telemetry = true
	}
}

// WithCache shares green tokens and small nodes through cache.
func WithCache(cache *NodeCache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

func newConfig(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c config) lexerOptions(extra ...lexer.Option) []lexer.Option {
	opts := extra
	if c.logger != nil {
		opts = append(opts, lexer.WithLogger(c.logger))
	}
	return opts
}

func (c config) parserOptions() []parser.Option {
	opts := []parser.Option{parser.WithVersion(c.version)}
	if c.logger != nil {
		opts = append(opts, parser.WithLogger(c.logger))
	}
	if c.telemetry {
		opts = append(opts, parser.WithTelemetry())
	}
	return opts
}

// Telemetry holds per-phase metrics. It is nil unless WithTelemetry is given.
type Telemetry struct {
	parser.Telemetry
	LexTime        time.Duration
	BuildTime      time.Duration
	Interpolations int // replacement fields parsed inside f-strings
}
