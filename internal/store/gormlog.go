package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/manav03panchal/tasklog/internal/logging"
	"github.com/manav03panchal/tasklog/internal/validate"
)

// maxLoggedSQL bounds the statement text kept in a log record.
const maxLoggedSQL = 1000

// slogGormLogger sends gorm's query log through the process slog logger.
type slogGormLogger struct {
	level                     gormlogger.LogLevel
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
}

func newGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) *slogGormLogger {
	return &slogGormLogger{
		level:                     level,
		slowThreshold:             slowThreshold,
		ignoreRecordNotFoundError: true,
	}
}

// gormLevel maps the process log level onto gorm's coarser levels.
func gormLevel() gormlogger.LogLevel {
	if logging.Debug {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		logging.LoggerFromContext(ctx).InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		logging.LoggerFromContext(ctx).WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		logging.LoggerFromContext(ctx).ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{
		slog.String("sql", validate.TruncateString(sql, maxLoggedSQL)),
		slog.Int64("rows", rows),
		slog.Int64(logging.KeyDuration, elapsed.Milliseconds()),
	}
	log := logging.LoggerFromContext(ctx)

	switch {
	case err != nil && l.level >= gormlogger.Error &&
		(!l.ignoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)):
		log.ErrorContext(ctx, "query failed", append(attrs, slog.Any(logging.KeyError, err))...)
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		log.WarnContext(ctx, "slow query", attrs...)
	case l.level >= gormlogger.Info:
		log.DebugContext(ctx, "query", attrs...)
	}
}
