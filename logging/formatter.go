package logging

import "time"

const defaultTimestampFormat = "2006-01-02 15:04:05.000"

// Formatter renders one entry. The returned slice is owned by the caller.
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry is a single log event.
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	Message  string
	Fields   []Field
}
