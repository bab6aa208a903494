// Package log provides structured logging for the experiments engine,
// backed by zerolog. The Logger interface keeps the call sites decoupled
// from the backend so tests can substitute a silent logger.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging interface used by the engine.
// Fields are alternating key-value pairs, slog style.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields attached to
	// every subsequent event.
	With(fields ...any) Logger
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

// New creates a JSON logger writing to w at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) Logger {
	zl := zerolog.New(w).Level(ToLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// NewDefault creates the standard engine logger: JSON to stderr at info.
func NewDefault() Logger {
	return New(os.Stderr, "info")
}

// Discard creates a logger that drops every event. Used in tests.
func Discard() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

// ToLevel converts a level name to a zerolog level.
func ToLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

// emit attaches the key-value pairs to the event. Error values go through
// zerolog's error marshaling so structured error types keep their fields.
func emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}
