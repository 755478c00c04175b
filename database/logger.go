package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erpcompany/erp/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SlowQueryThreshold marks queries logged as slow.
const SlowQueryThreshold = 200 * time.Millisecond

// gormLogger adapts logging.Logger to gorm's logger interface.
type gormLogger struct {
	logger logging.Logger
	level  gormlogger.LogLevel
}

// NewGormLogger routes gorm output to logger at Warn mode.
func NewGormLogger(logger logging.Logger) gormlogger.Interface {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &gormLogger{logger: logger.WithCategory("gorm"), level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{logger: l.logger, level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger.Error("Query failed",
			logging.Err(err),
			logging.Field{Key: "sql", Value: sql},
			logging.Field{Key: "rows", Value: rows},
			logging.Field{Key: "elapsed", Value: elapsed.String()})
	case elapsed > SlowQueryThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn("Slow query",
			logging.Field{Key: "sql", Value: sql},
			logging.Field{Key: "rows", Value: rows},
			logging.Field{Key: "elapsed", Value: elapsed.String()})
	default:
		sql, rows := fc()
		l.logger.Trace("Query",
			logging.Field{Key: "sql", Value: sql},
			logging.Field{Key: "rows", Value: rows},
			logging.Field{Key: "elapsed", Value: elapsed.String()})
	}
}
