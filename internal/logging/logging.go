// Package logging wraps zerolog with the exchange's two logger shapes: a
// console-writer logger for cmd/exchange, and a silent (zerolog.Nop) logger
// for library and test use so tests never spam stdout by default.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the shared log handle type across the module.
type Logger = zerolog.Logger

// New returns a human-readable console logger writing to w (os.Stdout if
// w is nil), timestamped, at the given minimum level.
func New(w io.Writer, level zerolog.Level) Logger {
	if w == nil {
		w = os.Stdout
	}
	writer := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Silent returns a logger that discards everything, for library callers
// and tests that don't want the exchange's diagnostic output.
func Silent() Logger {
	return zerolog.Nop()
}
