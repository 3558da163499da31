package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/protokoll/internal/config"
)

// New builds the process logger. Development gets a human readable console
// writer on stderr, every other environment gets JSON.
func New(obs *config.ObservabilityConfig) zerolog.Logger {
	return NewWithWriter(obs, os.Stderr)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(obs *config.ObservabilityConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(obs.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := obs.Logging.Format
	if format == "" {
		format = "json"
		if obs.Environment == "development" {
			format = "console"
		}
	}

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", obs.ServiceName).
		Str("env", obs.Environment).
		Logger()
}

// Bootstrap is used before the configuration is loaded.
func Bootstrap() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// ForLevel returns the event for a client supplied level string. Unknown
// levels are logged at info.
func ForLevel(l zerolog.Logger, level string) *zerolog.Event {
	switch level {
	case "error":
		return l.Error()
	case "warn", "warning":
		return l.Warn()
	case "debug":
		return l.Debug()
	default:
		return l.Info()
	}
}
