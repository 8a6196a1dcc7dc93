package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/settings"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
}

func TestFromSettings(t *testing.T) {
	s := settings.Default()
	s.Logging = settings.LoggingConfig{Level: "debug", Pretty: true}

	cfg := FromSettings(s)
	if cfg.Level != LevelDebug {
		t.Errorf("Level = %s, want debug", cfg.Level)
	}
	if !cfg.Pretty {
		t.Error("Pretty should be true")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		emit  func(zerolog.Logger)
	}{
		{"debug_level", LevelDebug, func(l zerolog.Logger) { l.Debug().Msg("hello") }},
		{"info_level", LevelInfo, func(l zerolog.Logger) { l.Info().Msg("hello") }},
		{"warn_level", LevelWarn, func(l zerolog.Logger) { l.Warn().Msg("hello") }},
		{"error_level", LevelError, func(l zerolog.Logger) { l.Error().Msg("hello") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: tt.level, Output: buf})

			tt.emit(logger)

			if !strings.Contains(buf.String(), "hello") {
				t.Errorf("Expected output to contain message, got %q", buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("conditional")
	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, `"component":"conditional"`) {
		t.Errorf("Expected component field, got %q", output)
	}
}

func TestForRequest(t *testing.T) {
	buf := &bytes.Buffer{}
	base := Setup(Config{Level: LevelInfo, Output: buf})

	r := httptest.NewRequest("DELETE", "/books/1/", nil)
	logger := ForRequest(base, r)
	logger.Info().Msg("gate")

	output := buf.String()
	if !strings.Contains(output, `"method":"DELETE"`) || !strings.Contains(output, `"path":"/books/1/"`) {
		t.Errorf("Expected request fields, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelWarn, Output: buf})

	logger := NewLogger("test")
	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Error("messages below Warn should be filtered out")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at Warn level")
	}
}

func TestMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	base := Setup(Config{Level: LevelDebug, Output: buf})

	h := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := ForRequest(base, r)
		logger.Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/hello/", nil))

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
	output := buf.String()
	if !strings.Contains(output, `"req_id"`) {
		t.Errorf("Expected req_id field, got %q", output)
	}
	if !strings.Contains(output, `"status":418`) {
		t.Errorf("Expected access log with status, got %q", output)
	}
}
