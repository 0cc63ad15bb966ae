// Package logger provides the structured, component-aware logging
// contract used across the engine. It mirrors the teacher's
// core.Logger/ComponentAwareLogger split but backs the concrete
// implementation with zerolog instead of a hand-rolled JSON writer.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging contract every component depends on.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})

	InfoWithContext(ctx context.Context, msg string, fields map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, fields map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, fields map[string]interface{})
}

// ComponentAwareLogger lets a subsystem tag its own logs, e.g.
// logger.WithComponent("guardrail") or "coordinator".
type ComponentAwareLogger interface {
	Logger
	WithComponent(component string) Logger
}

// contextKey is used to stash trace/request correlation ids on a context.
type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying a request id for correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ZeroLogger implements ComponentAwareLogger on top of zerolog.
type ZeroLogger struct {
	z         zerolog.Logger
	component string
}

// New creates a ZeroLogger writing level-filtered JSON to w (or a
// console writer when pretty is requested for local development).
func New(level string, w io.Writer, pretty bool) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	zl = zl.Level(parseLevel(level))
	return &ZeroLogger{z: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZeroLogger) WithComponent(component string) Logger {
	return &ZeroLogger{z: l.z.With().Str("component", component).Logger(), component: component}
}

func (l *ZeroLogger) event(level zerolog.Level, ctx context.Context, msg string, fields map[string]interface{}) {
	ev := l.z.WithLevel(level)
	if rid := requestIDFrom(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{})  { l.event(zerolog.InfoLevel, nil, msg, fields) }
func (l *ZeroLogger) Warn(msg string, fields map[string]interface{})  { l.event(zerolog.WarnLevel, nil, msg, fields) }
func (l *ZeroLogger) Error(msg string, fields map[string]interface{}) { l.event(zerolog.ErrorLevel, nil, msg, fields) }
func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) { l.event(zerolog.DebugLevel, nil, msg, fields) }

func (l *ZeroLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.event(zerolog.InfoLevel, ctx, msg, fields)
}
func (l *ZeroLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.event(zerolog.WarnLevel, ctx, msg, fields)
}
func (l *ZeroLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.event(zerolog.ErrorLevel, ctx, msg, fields)
}
func (l *ZeroLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.event(zerolog.DebugLevel, ctx, msg, fields)
}

// NoOpLogger discards everything; used in unit tests that don't care
// about log output, grounded on core.NoOpLogger.
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]interface{})  {}
func (NoOpLogger) Warn(string, map[string]interface{})  {}
func (NoOpLogger) Error(string, map[string]interface{}) {}
func (NoOpLogger) Debug(string, map[string]interface{}) {}
func (NoOpLogger) InfoWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) WarnWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) ErrorWithContext(context.Context, string, map[string]interface{}) {}
func (NoOpLogger) DebugWithContext(context.Context, string, map[string]interface{}) {}
func (n NoOpLogger) WithComponent(string) Logger { return n }

// Component tags l with a component name when l implements
// ComponentAwareLogger, falling back to l unchanged otherwise. Grounded
// on the teacher's repeated `if cal, ok := logger.(ComponentAwareLogger)`
// check (e.g. core/memory_store.go, core/redis_discovery.go).
func Component(l Logger, name string) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	if cal, ok := l.(ComponentAwareLogger); ok {
		return cal.WithComponent(name)
	}
	return l
}
