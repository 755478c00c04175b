package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLoggerOptions configures FileLoggerProvider.
type FileLoggerOptions struct {
	Path string
	// Formatter defaults to a text formatter without color.
	Formatter  Formatter
	BufferSize int
}

// FileLoggerProvider appends entries to a file through an AsyncWriter.
type FileLoggerProvider struct {
	file   *os.File
	writer *AsyncWriter
	level  *levelVar
	once   sync.Once
	err    error
}

// NewFileLoggerProvider opens (or creates) the log file and its parent
// directories.
func NewFileLoggerProvider(options FileLoggerOptions) (*FileLoggerProvider, error) {
	if options.Path == "" {
		return nil, fmt.Errorf("logging: file path is required")
	}
	if options.Formatter == nil {
		options.Formatter = NewTextFormatter()
	}
	if options.BufferSize <= 0 {
		options.BufferSize = 1024
	}

	if dir := filepath.Dir(options.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(options.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	return &FileLoggerProvider{
		file:   file,
		writer: NewAsyncWriter(file, options.Formatter, options.BufferSize),
		level:  newLevelVar(LogLevelInfo),
	}, nil
}

func (p *FileLoggerProvider) CreateLogger(category string) Logger {
	return &entryLogger{category: category, level: p.level, sink: p.writer.WriteLog}
}

func (p *FileLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.level.Set(level)
}

// Close drains pending entries and closes the file. Entries logged after
// Close are dropped.
func (p *FileLoggerProvider) Close() error {
	p.once.Do(func() {
		_ = p.writer.Close()
		p.err = p.file.Close()
	})
	return p.err
}
