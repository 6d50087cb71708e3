// Package logging configures sqlguard's slog output and the small
// Logger surface that trace-level callers log through.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options controls the handler built by New.
type Options struct {
	// Verbose lowers the level from info to debug.
	Verbose bool
	// Writer receives log lines. os.Stderr when nil.
	Writer io.Writer
}

// New returns a text-handler slog.Logger honoring opts.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger is the surface handed to packages that only trace progress,
// such as the schema builder reporting skipped statements.
type Logger interface {
	Debug(msg string, args ...any)
	With(args ...any) Logger
}

type slogAdapter struct {
	base *slog.Logger
}

// NewSlogAdapter wraps a *slog.Logger in the Logger interface.
func NewSlogAdapter(base *slog.Logger) Logger {
	return slogAdapter{base: base}
}

func (a slogAdapter) Debug(msg string, args ...any) {
	a.base.Debug(msg, args...)
}

func (a slogAdapter) With(args ...any) Logger {
	return slogAdapter{base: a.base.With(args...)}
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...any) {}

func (nopLogger) With(...any) Logger { return nopLogger{} }
