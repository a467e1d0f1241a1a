package logging

import (
	"context"
	"maps"
	"os"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger is a zap-backed implementation of Logger.
// Output goes to stderr so that command output on stdout stays machine readable.
type DefaultLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	fields Fields
}

// NewDefaultLogger creates a console logger, colored when stderr is a terminal
func NewDefaultLogger() *DefaultLogger {
	return newConsoleLogger(isTerminal())
}

// NewJSONLogger creates a logger emitting one JSON object per entry
func NewJSONLogger() *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	return &DefaultLogger{logger: zap.New(core), level: level, fields: make(Fields)}
}

// NewLoggerWithCore wraps an existing zap core. The core's own level check still
// applies on top of SetLevel.
func NewLoggerWithCore(core zapcore.Core) *DefaultLogger {
	return &DefaultLogger{
		logger: zap.New(core),
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
		fields: make(Fields),
	}
}

func newConsoleLogger(colors bool) *DefaultLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if colors {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)

	return &DefaultLogger{logger: zap.New(core), level: level, fields: make(Fields)}
}

// isTerminal reports whether stderr is a character device
func isTerminal() bool {
	if fileInfo, _ := os.Stderr.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// zapFields merges preset and call fields into zap fields with a stable key order
func (d *DefaultLogger) zapFields(err error, fields ...Fields) []zap.Field {
	allFields := make(Fields, len(d.fields))
	maps.Copy(allFields, d.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	out := make([]zap.Field, 0, len(allFields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, key := range slices.Sorted(maps.Keys(allFields)) {
		out = append(out, zap.Any(key, allFields[key]))
	}
	return out
}

func (d *DefaultLogger) enabled(level Level) bool {
	return d.level.Enabled(toZapLevel(level))
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	if d.enabled(DebugLevel) {
		d.logger.Debug(msg, d.zapFields(nil, fields...)...)
	}
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	if d.enabled(InfoLevel) {
		d.logger.Info(msg, d.zapFields(nil, fields...)...)
	}
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	if d.enabled(WarnLevel) {
		d.logger.Warn(msg, d.zapFields(nil, fields...)...)
	}
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	if d.enabled(ErrorLevel) {
		d.logger.Error(msg, d.zapFields(err, fields...)...)
	}
}

// Fatal logs and exits the process with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.logger.Fatal(msg, d.zapFields(err, fields...)...)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		logger: d.logger,
		level:  d.level,
		fields: newFields,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level shared by this logger and every logger derived from it
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered entries
func (d *DefaultLogger) Sync() error {
	return d.logger.Sync()
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
