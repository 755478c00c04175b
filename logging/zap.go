package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerProvider emits one JSON object per entry through zap.
type ZapLoggerProvider struct {
	root  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLoggerProvider writes to w, or stdout when w is nil.
func NewZapLoggerProvider(w io.Writer) *ZapLoggerProvider {
	if w == nil {
		w = os.Stdout
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.NameKey = "category"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)

	return &ZapLoggerProvider{root: zap.New(core), level: level}
}

func (p *ZapLoggerProvider) CreateLogger(category string) Logger {
	return &zapLogger{root: p.root, l: p.root.Named(category)}
}

func (p *ZapLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.level.SetLevel(toZapLevel(level))
}

// Close flushes buffered entries. Sync errors on terminals are ignored.
func (p *ZapLoggerProvider) Close() error {
	_ = p.root.Sync()
	return nil
}

// toZapLevel folds trace into debug; zap has no lower level.
func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelTrace, LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

type zapLogger struct {
	root *zap.Logger
	l    *zap.Logger
}

func (z *zapLogger) Trace(msg string, fields ...Field) { z.Log(LogLevelTrace, msg, fields...) }
func (z *zapLogger) Debug(msg string, fields ...Field) { z.Log(LogLevelDebug, msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field) { z.Log(LogLevelInfo, msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field) { z.Log(LogLevelWarn, msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.Log(LogLevelError, msg, fields...) }
func (z *zapLogger) Fatal(msg string, fields ...Field) { z.l.Fatal(msg, zapFields(fields)...) }

func (z *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level == LogLevelFatal {
		z.Fatal(msg, fields...)
		return
	}
	if ce := z.l.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (z *zapLogger) WithFields(fields ...Field) Logger {
	return &zapLogger{root: z.root, l: z.l.With(zapFields(fields)...)}
}

// WithCategory starts from the root logger. Fields added with WithFields
// are not carried over.
func (z *zapLogger) WithCategory(category string) Logger {
	return &zapLogger{root: z.root, l: z.root.Named(category)}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
