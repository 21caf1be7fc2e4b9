// Package zlog adapts zerolog to the domain Logger interface.
package zlog

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ochairo/pkggate/internal/domain/interfaces"
)

// Options controls logger output
type Options struct {
	Level   string // debug, info, warn, error
	JSON    bool   // JSON lines instead of console output
	NoColor bool
}

// Logger implements interfaces.Logger on top of zerolog
type Logger struct {
	log zerolog.Logger
}

// New creates a logger writing to out
func New(out io.Writer, opts Options) *Logger {
	var w io.Writer = out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	}

	return &Logger{
		log: zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger(),
	}
}

// FromZerolog wraps an existing zerolog logger
func FromZerolog(l zerolog.Logger) *Logger {
	return &Logger{log: l}
}

// ParseLevel maps a level name to zerolog, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug-level message
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	write(l.log.Debug(), msg, fields)
}

// Info logs an info-level message
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	write(l.log.Info(), msg, fields)
}

// Warn logs a warning-level message
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	write(l.log.Warn(), msg, fields)
}

// Error logs an error-level message
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	write(l.log.Error(), msg, fields)
}

// With returns a child logger carrying fields on every entry
func (l *Logger) With(fields ...interfaces.Field) interfaces.Logger {
	ctx := l.log.With()
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			ctx = ctx.AnErr(f.Key, err)
			continue
		}
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{log: ctx.Logger()}
}

func write(e *zerolog.Event, msg string, fields []interfaces.Field) {
	if e == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			e = e.AnErr(f.Key, v)
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case int64:
			e = e.Int64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	e.Msg(msg)
}
