package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erpcompany/erp/config"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Settings is the logging section of the application configuration.
type Settings struct {
	Level    LogLevel
	Format   string
	Color    bool
	FilePath string
}

// SettingsFromConfig reads logging.level, logging.format, logging.color and
// logging.file.path. A "debug" option forces the debug level unless a more
// verbose level is configured.
func SettingsFromConfig(cfg config.Configuration) (Settings, error) {
	level, err := ParseLevel(cfg.Get("logging.level"))
	if err != nil {
		return Settings{}, err
	}
	if cfg.Has("debug") && level > LogLevelDebug {
		if enabled, err := cfg.GetBool("debug"); err != nil || enabled {
			level = LogLevelDebug
		}
	}

	format := strings.ToLower(cfg.GetWithDefault("logging.format", FormatText))
	if format != FormatText && format != FormatJSON {
		return Settings{}, fmt.Errorf("logging: unknown format %q", format)
	}

	color, err := cfg.GetBool("logging.color")
	if err != nil && !errors.Is(err, config.ErrKeyNotFound) {
		return Settings{}, fmt.Errorf("logging: %w", err)
	}

	return Settings{
		Level:    level,
		Format:   format,
		Color:    color,
		FilePath: cfg.Get("logging.file.path"),
	}, nil
}

// NewFactory builds a factory for s. Console output goes to stdout, or to
// out when non-nil.
func NewFactory(s Settings, out io.Writer) (LoggerFactory, error) {
	if out == nil {
		out = os.Stdout
	}

	factory := NewLoggerFactory(s.Level)

	switch s.Format {
	case FormatJSON:
		factory.AddProvider(NewZapLoggerProvider(out))
	default:
		factory.AddProvider(NewConsoleLoggerProvider(ConsoleLoggerOptions{
			IncludeTimestamp: true,
			ColorOutput:      s.Color,
			Output:           out,
		}))
	}

	if s.FilePath != "" {
		var formatter Formatter = NewTextFormatter()
		if s.Format == FormatJSON {
			formatter = NewJsonFormatter()
		}
		fp, err := NewFileLoggerProvider(FileLoggerOptions{Path: s.FilePath, Formatter: formatter})
		if err != nil {
			return nil, err
		}
		factory.AddProvider(fp)
	}

	return factory, nil
}

// FromConfig is SettingsFromConfig followed by NewFactory on stdout.
func FromConfig(cfg config.Configuration) (LoggerFactory, error) {
	s, err := SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewFactory(s, nil)
}

// NewLogger returns a colored console logger at info level.
func NewLogger() Logger {
	factory := NewLoggerFactory(LogLevelInfo)
	factory.AddProvider(NewConsoleLoggerProvider(ConsoleLoggerOptions{
		IncludeTimestamp: true,
		ColorOutput:      true,
	}))
	return factory.CreateLogger("default")
}
