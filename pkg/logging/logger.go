// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/restext/pkg/settings"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// FromSettings builds a Config from the logging section of the settings.
func FromSettings(s settings.Settings) Config {
	cfg := DefaultConfig()
	if s.Logging.Level != "" {
		cfg.Level = LogLevel(s.Logging.Level)
	}
	cfg.Pretty = s.Logging.Pretty
	return cfg
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForRequest returns the logger installed by the router's hlog middleware,
// falling back to base, annotated with the request method and path.
func ForRequest(base zerolog.Logger, r *http.Request) zerolog.Logger {
	l := base
	if fromCtx := hlog.FromRequest(r); fromCtx.GetLevel() != zerolog.Disabled {
		l = *fromCtx
	}
	return l.With().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()
}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// Middleware installs base on every request with a request id, and logs
// each completed request at debug level.
func Middleware(base zerolog.Logger) func(http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})
	withLogger := hlog.NewHandler(base)
	withID := hlog.RequestIDHandler("req_id", RequestIDHeader)

	return func(next http.Handler) http.Handler {
		return withLogger(withID(access(next)))
	}
}

// Log Level Guidelines:
//
// Debug: cache hit/miss with key and TTL, memoized key lookups,
// computed entity tags, route registration.
//
// Info: server startup/shutdown, backend connections.
//
// Warn: discarded malformed If-Match/If-None-Match headers, cache backend
// failures, unresolvable key functions.
//
// Error: handler failures rendered as 5xx.
//
// Context Fields:
//   - component: package emitting the event
//   - method, path: request line
//   - key: cache key or entity tag digest
//   - backend: cache backend name
//   - status: response status code
//   - ttl: cache entry TTL
