package logging

import (
	"log/slog"
	"strings"

	"github.com/mama165/sdk-go/logs"
)

// Logger is a deliberately small, framework-agnostic logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// SlogLogger implements Logger on top of a *slog.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewLogger builds a structured logger for the given level name
// (DEBUG, INFO, WARN, ERROR). component, when set, is attached to every entry.
func NewLogger(level, component string) *SlogLogger {
	l := &SlogLogger{log: logs.GetLoggerFromString(strings.ToUpper(strings.TrimSpace(level)))}
	if component != "" {
		l.log = l.log.With("component", component)
	}
	return l
}

func (s *SlogLogger) Debug(msg string, fields ...Field) { s.log.Debug(msg, attrs(fields)...) }

func (s *SlogLogger) Info(msg string, fields ...Field) { s.log.Info(msg, attrs(fields)...) }

func (s *SlogLogger) Warn(msg string, fields ...Field) { s.log.Warn(msg, attrs(fields)...) }

func (s *SlogLogger) Error(msg string, fields ...Field) { s.log.Error(msg, attrs(fields)...) }

func (s *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{log: s.log.With(attrs(fields)...)}
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

// Err is shorthand for the "error" field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}
