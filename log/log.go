// Package log provides a concurrency-safe structured logging interface
// built on log/slog, extended with a Trace level below Debug for
// high-volume evaluator tracing (cache hits, guard trips).
package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// String returns the level name, including the trace extension slog
// does not know about.
func (l Level) String() string {
	if l == LevelTrace {
		return "trace"
	}

	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel parses a level name. Unrecognized names fall back to
// DefaultLevel.
func ParseLevel(s string) Level {
	// slog.Level.UnmarshalText does not recognize trace.
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// ParseFormat parses a format name. Unrecognized names fall back to
// DefaultFormat.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// Logger is a structured logger. The zero value silently discards all
// output.
type Logger struct {
	handler slog.Handler
}

// Option configures a Logger at construction.
type Option func(*config)

type config struct {
	level      Level
	format     Format
	timeLayout string
}

// WithLevel sets the minimum level.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout for text output.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.timeLayout = layout }
}

// Make creates a Logger writing to w.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := config{
		level:      DefaultLevel,
		format:     DefaultFormat,
		timeLayout: time.RFC3339,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{
		Level: slog.Level(cfg.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(Level(level).String())
				}
			case slog.TimeKey:
				if len(groups) == 0 && cfg.format == FormatText {
					a.Value = slog.StringValue(
						a.Value.Time().Format(cfg.timeLayout),
					)
				}
			}

			return a
		},
	}

	var handler slog.Handler
	if cfg.format == FormatJSON {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	return Logger{handler: handler}
}

// Discard returns a Logger that drops every message.
func Discard() Logger { return Logger{} }

// With returns a Logger that includes attrs in every message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.handler == nil {
		return l
	}

	return Logger{handler: l.handler.WithAttrs(attrs)}
}

// Enabled reports whether messages at level would be emitted.
func (l Logger) Enabled(level Level) bool {
	return l.handler != nil &&
		l.handler.Enabled(context.Background(), slog.Level(level))
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(LevelTrace, msg, attrs...)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(LevelDebug, msg, attrs...)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(LevelInfo, msg, attrs...)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(LevelWarn, msg, attrs...)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(LevelError, msg, attrs...)
}

func (l Logger) log(level Level, msg string, attrs ...slog.Attr) {
	if l.handler == nil {
		return
	}

	ctx := context.Background()
	if !l.handler.Enabled(ctx, slog.Level(level)) {
		return
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, 0)
	r.AddAttrs(attrs...)

	_ = l.handler.Handle(ctx, r)
}
