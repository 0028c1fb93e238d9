// Package rlog wraps zerolog for the runtime's structured diagnostic
// output: dropped submissions, double-submit warnings, recovered
// panics, and residue reports from AssertClean. Every method is
// nil-safe so a runner constructed without a logger degrades silently
// rather than panicking.
package rlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin, nil-safe wrapper around zerolog.Logger.
type Logger struct {
	base zerolog.Logger
	nop  bool
}

// New creates a Logger writing JSON lines to w at the given level
// ("debug", "info", "warn", "error"; unrecognized values default to
// "info").
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &Logger{base: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything, used as the default
// when a PipelineRunner is constructed without an explicit logger.
func Nop() *Logger {
	return &Logger{nop: true}
}

// With returns a derived Logger that always attaches the given
// component name field.
func (l *Logger) With(component string) *Logger {
	if l == nil || l.nop {
		return l
	}
	return &Logger{base: l.base.With().Str("component", component).Logger()}
}

// Warn logs a warning-level diagnostic, e.g. a dropped submission or a
// double-submit on a Single-kind channel.
func (l *Logger) Warn(msg string, fields map[string]any) {
	if l == nil || l.nop {
		return
	}
	evt := l.base.Warn()
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}

// Error logs an error-level diagnostic, e.g. a recovered panic.
func (l *Logger) Error(err error, msg string) {
	if l == nil || l.nop {
		return
	}
	l.base.Error().Err(err).Msg(msg)
}

// Debug logs a debug-level diagnostic.
func (l *Logger) Debug(msg string, fields map[string]any) {
	if l == nil || l.nop {
		return
	}
	evt := l.base.Debug()
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}
