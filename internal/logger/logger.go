// Package logger provides a small structured logger backed by logrus.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Ctx is the set of fields attached to a log entry.
type Ctx map[string]any

// Logger is the logging interface used across the application.
type Logger interface {
	Error(msg string, ctx ...Ctx)
	Warn(msg string, ctx ...Ctx)
	Info(msg string, ctx ...Ctx)
	Debug(msg string, ctx ...Ctx)
	AddContext(ctx Ctx) Logger
}

// Options configures a new logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds a logrus-backed logger.
func New(opts Options) (Logger, error) {
	l := logrus.New()

	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	l.SetLevel(lvl)

	switch opts.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return Wrap(l), nil
}

// Wrap adapts an existing logrus logger, e.g. a test logger.
func Wrap(l *logrus.Logger) Logger {
	return &logWrapper{target: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Wrap(l)
}

type logWrapper struct {
	target *logrus.Entry
}

func (lw *logWrapper) ctxLogger(ctx ...Ctx) *logrus.Entry {
	entry := lw.target
	for _, c := range ctx {
		entry = entry.WithFields(logrus.Fields(c))
	}
	return entry
}

// Error logs an error level message.
func (lw *logWrapper) Error(msg string, ctx ...Ctx) {
	lw.ctxLogger(ctx...).Error(msg)
}

// Warn logs a warning level message.
func (lw *logWrapper) Warn(msg string, ctx ...Ctx) {
	lw.ctxLogger(ctx...).Warn(msg)
}

// Info logs an info level message.
func (lw *logWrapper) Info(msg string, ctx ...Ctx) {
	lw.ctxLogger(ctx...).Info(msg)
}

// Debug logs a debug level message.
func (lw *logWrapper) Debug(msg string, ctx ...Ctx) {
	lw.ctxLogger(ctx...).Debug(msg)
}

// AddContext returns a sub-logger with the provided context added.
func (lw *logWrapper) AddContext(ctx Ctx) Logger {
	return &logWrapper{target: lw.ctxLogger(ctx)}
}
