// Package stdout implements log.Logger with zap, writing structured JSON
// records to stdout.
package stdout

import (
	"os"
	"sync"
	"time"

	"github.com/relayhealth/relayhealth/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements log.Logger using zap for JSON output to stdout.
type Logger struct {
	zapLogger *zap.Logger
	config    *Config
	fields    []log.Field
	mu        sync.RWMutex
}

// New creates a Logger with the given configuration.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        config.FieldNames.Time,
		LevelKey:       config.FieldNames.Level,
		NameKey:        "logger",
		CallerKey:      config.FieldNames.Caller,
		MessageKey:     config.FieldNames.Message,
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     timeEncoder(config.TimeFormat),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		stdoutSyncer{},
		convertLevel(config.Level),
	)

	var options []zap.Option
	if config.EnableCaller {
		options = append(options, zap.AddCaller())
	}
	if config.EnableStacktrace {
		options = append(options, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if config.Development {
		options = append(options, zap.Development())
	}

	return &Logger{
		zapLogger: zap.New(core, options...),
		config:    config,
	}, nil
}

func (l *Logger) Debug(msg string, fields ...log.Field) { l.log(log.DebugLevel, msg, fields...) }
func (l *Logger) Info(msg string, fields ...log.Field)  { l.log(log.InfoLevel, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...log.Field)  { l.log(log.WarnLevel, msg, fields...) }
func (l *Logger) Error(msg string, fields ...log.Field) { l.log(log.ErrorLevel, msg, fields...) }

// With returns a child logger that always includes fields.
func (l *Logger) With(fields ...log.Field) log.Logger {
	l.mu.RLock()
	inherited := make([]log.Field, len(l.fields))
	copy(inherited, l.fields)
	l.mu.RUnlock()

	return &Logger{
		zapLogger: l.zapLogger,
		config:    l.config,
		fields:    append(inherited, fields...),
	}
}

func (l *Logger) log(level log.Level, msg string, fields ...log.Field) {
	if level < l.config.Level {
		return
	}

	l.mu.RLock()
	all := make([]log.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.mu.RUnlock()

	zapFields := toZapFields(all)
	switch level {
	case log.DebugLevel:
		l.zapLogger.Debug(msg, zapFields...)
	case log.InfoLevel:
		l.zapLogger.Info(msg, zapFields...)
	case log.WarnLevel:
		l.zapLogger.Warn(msg, zapFields...)
	case log.ErrorLevel:
		l.zapLogger.Error(msg, zapFields...)
	}
}

// stdoutSyncer writes to whatever os.Stdout is at write time, rather
// than the *os.File it held when the Logger was built.
type stdoutSyncer struct{}

func (stdoutSyncer) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutSyncer) Sync() error                 { return os.Stdout.Sync() }

func convertLevel(level log.Level) zapcore.Level {
	switch level {
	case log.DebugLevel:
		return zapcore.DebugLevel
	case log.WarnLevel:
		return zapcore.WarnLevel
	case log.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []log.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = toZapField(f)
	}
	return out
}

func toZapField(f log.Field) zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case uint32:
		return zap.Uint32(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case time.Time:
		return zap.Time(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

func timeEncoder(format string) zapcore.TimeEncoder {
	switch format {
	case time.RFC3339:
		return zapcore.RFC3339TimeEncoder
	case time.RFC3339Nano:
		return zapcore.RFC3339NanoTimeEncoder
	default:
		return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format(format))
		}
	}
}
