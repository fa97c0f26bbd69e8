package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM statements into zap. Each statement carries the
// request, cashier and drawer session ids found on its context so that a
// slow checkout query can be traced back to the till that issued it.
type GormLogger struct {
	log        *zap.Logger
	level      gormlogger.LogLevel
	slow       time.Duration
	maxSQLLen  int
	keepMisses bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow.
// Zero disables slow statement warnings.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(g *GormLogger) { g.slow = d }
}

// WithMaxSQLLength truncates logged statements, useful for bulk inserts of sale items
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(g *GormLogger) { g.maxSQLLen = n }
}

// WithRecordNotFound logs gorm.ErrRecordNotFound as an error instead of dropping it
func WithRecordNotFound() GormLoggerOption {
	return func(g *GormLogger) { g.keepMisses = true }
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	g := &GormLogger{
		log:   base.Named("gorm"),
		level: level,
		slow:  defaultSlowQuery,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Info, msg, data)
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Warn, msg, data)
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Error, msg, data)
}

func (g *GormLogger) printf(at gormlogger.LogLevel, msg string, data []any) {
	if g.level < at {
		return
	}
	text := fmt.Sprintf(msg, data...)
	switch at {
	case gormlogger.Error:
		g.log.Error(text)
	case gormlogger.Warn:
		g.log.Warn(text)
	default:
		g.log.Info(text)
	}
}

// Trace logs one executed statement
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	if err != nil && !g.keepMisses && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	isSlow := g.slow > 0 && elapsed > g.slow
	switch {
	case err != nil && g.level >= gormlogger.Error:
	case isSlow && g.level >= gormlogger.Warn:
	case g.level >= gormlogger.Info:
	default:
		return
	}

	statement, rows := fc()
	if g.maxSQLLen > 0 && len(statement) > g.maxSQLLen {
		statement = statement[:g.maxSQLLen] + "..."
	}
	fields := append(correlation(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", statement),
	)

	switch {
	case err != nil:
		g.log.Error("SQL Error", append(fields, zap.Error(err))...)
	case isSlow:
		g.log.Warn(fmt.Sprintf("SLOW SQL >= %v", g.slow), fields...)
	default:
		g.log.Debug("SQL Query", fields...)
	}
}

func correlation(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 7)
	for _, kv := range [...]struct{ key, val string }{
		{"request_id", GetRequestID(ctx)},
		{"user_id", GetUserID(ctx)},
		{"drawer_session_id", stringValue(ctx, SessionIDKey)},
		{"trace_id", GetTraceID(ctx)},
	} {
		if kv.val != "" {
			fields = append(fields, zap.String(kv.key, kv.val))
		}
	}
	return fields
}

// MapGormLogLevel converts the configured log level into a GORM level.
// Statement logging only happens at debug or info.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
