// Package log wires zerolog: a single base logger, narrowed per
// component with structured fields rather than interpolated strings.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewBase returns the process-wide logger. Callers derive component
// loggers from it with Component.
func NewBase() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().
	Timestamp().
	Logger()
}

// Component returns a child logger tagged with component=name. Each
// keeper's Logger() method derives its component logger from this at
// construction time.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

