package logging

import (
	"os"
	"sync/atomic"
	"time"
)

// levelVar is a provider's minimum level, shared with the loggers it made.
type levelVar struct {
	v atomic.Int32
}

func newLevelVar(l LogLevel) *levelVar {
	lv := &levelVar{}
	lv.Set(l)
	return lv
}

func (lv *levelVar) Set(l LogLevel) { lv.v.Store(int32(l)) }
func (lv *levelVar) Get() LogLevel { return LogLevel(lv.v.Load()) }

// entryLogger builds LogEntry values and hands them to a sink.
type entryLogger struct {
	category string
	fields   []Field
	level    *levelVar
	sink     func(*LogEntry)
}

func (l *entryLogger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *entryLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *entryLogger) Info(msg string, fields ...Field) { l.Log(LogLevelInfo, msg, fields...) }
func (l *entryLogger) Warn(msg string, fields ...Field) { l.Log(LogLevelWarn, msg, fields...) }
func (l *entryLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *entryLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *entryLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.level.Get() {
		return
	}
	l.sink(&LogEntry{
		Time:     time.Now(),
		Level:    level,
		Category: l.category,
		Message:  msg,
		Fields:   joinFields(l.fields, fields),
	})
}

func (l *entryLogger) WithFields(fields ...Field) Logger {
	return &entryLogger{
		category: l.category,
		fields:   joinFields(l.fields, fields),
		level:    l.level,
		sink:     l.sink,
	}
}

func (l *entryLogger) WithCategory(category string) Logger {
	return &entryLogger{
		category: category,
		fields:   l.fields,
		level:    l.level,
		sink:     l.sink,
	}
}
