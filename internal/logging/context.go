package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// scopeKey indexes the log scope values carried on a context.
type scopeKey int

const (
	runKey scopeKey = iota
	commandKey
	taskKey
	planKey
)

// NewRunID returns a time-sortable id for one CLI invocation.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// StartRun scopes ctx to one invocation of command. Every record logged
// through the returned context carries the run id and command path.
func StartRun(ctx context.Context, command string) context.Context {
	ctx = context.WithValue(ctx, runKey, NewRunID())
	return context.WithValue(ctx, commandKey, command)
}

// WithTask scopes ctx to a task.
func WithTask(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskKey, taskID)
}

// WithPlan scopes ctx to a running sync plan. Store calls made by the
// plan's steps inherit it.
func WithPlan(ctx context.Context, plan string) context.Context {
	return context.WithValue(ctx, planKey, plan)
}

// RunID returns the invocation id, or "" outside StartRun.
func RunID(ctx context.Context) string {
	return scopeValue(ctx, runKey)
}

func scopeValue(ctx context.Context, key scopeKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// scopeAttrs lists the scope set on ctx, outermost first.
func scopeAttrs(ctx context.Context) []any {
	var attrs []any
	for _, s := range []struct {
		key  scopeKey
		name string
	}{
		{runKey, KeyRun},
		{commandKey, KeyCommand},
		{taskKey, KeyTask},
		{planKey, KeyPlan},
	} {
		if v := scopeValue(ctx, s.key); v != "" {
			attrs = append(attrs, slog.String(s.name, v))
		}
	}
	return attrs
}

// LoggerFromContext returns the global logger with ctx's scope attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if attrs := scopeAttrs(ctx); len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger
}

// ScopedLogger logs with a context's scope attached.
type ScopedLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

// FromContext creates a ScopedLogger for ctx.
func FromContext(ctx context.Context) *ScopedLogger {
	return &ScopedLogger{
		ctx:    ctx,
		logger: LoggerFromContext(ctx),
	}
}

// With returns a logger with additional attributes.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	return &ScopedLogger{
		ctx:    l.ctx,
		logger: l.logger.With(args...),
	}
}

// Step returns a logger for one step of the current plan.
func (l *ScopedLogger) Step(name string) *ScopedLogger {
	return l.With(KeyStep, name)
}

// Debug logs at DEBUG level.
func (l *ScopedLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

// Warn logs at WARN level.
func (l *ScopedLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

// Error logs at ERROR level.
func (l *ScopedLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}
