package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with a stable field-helper API used across services.
type Logger struct {
	*zap.Logger
}

// New creates a configured Logger. Encoding is "json" or "console".
func New(level, encoding string) (*Logger, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if encoding == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(logLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{l}, nil
}

// NewNop returns a no-op logger for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.Logger.Info(msg, fields...) }

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.Logger.Warn(msg, fields...) }

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.Logger.Error(msg, fields...) }

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.Logger.Debug(msg, fields...) }

// Fatal logs a message at FatalLevel and exits.
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.Logger.Fatal(msg, fields...) }

// DebugContext logs at DebugLevel; the context is accepted for call-site symmetry
// with request-scoped code paths.
func (l *Logger) DebugContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Field builds a zap field from any value.
func Field(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// ErrorField builds a zap error field.
func ErrorField(err error) zap.Field { return zap.Error(err) }

// StringField builds a zap string field.
func StringField(key, value string) zap.Field { return zap.String(key, value) }

// IntField builds a zap int field.
func IntField(key string, value int) zap.Field { return zap.Int(key, value) }

// UintField builds a zap uint field.
func UintField(key string, value uint) zap.Field { return zap.Uint(key, value) }

// Float64Field builds a zap float64 field.
func Float64Field(key string, value float64) zap.Field { return zap.Float64(key, value) }
