// Package logger provides the zap-backed implementation of ports.Logger.
package logger

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements the ports.Logger interface using uber-go/zap.
type ZapLogger struct {
	logger *zap.Logger
}

// Config holds configuration for the zap logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error" (case-insensitive).
	// Defaults to "info" when empty.
	Level string
	// Development switches to the human-readable console encoder.
	Development bool
}

// New creates a zap-backed logger.
func New(cfg Config) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return &ZapLogger{logger: l}, nil
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// zapFields flattens the variadic field maps into sorted zap fields so the
// output order is stable.
func zapFields(fields ...map[string]interface{}) []zap.Field {
	if len(fields) == 0 || fields[0] == nil {
		return nil
	}
	keys := make([]string, 0, len(fields[0]))
	for k := range fields[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	zfs := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zfs = append(zfs, zap.Any(k, fields[0][k]))
	}
	return zfs
}

// Debug logs a message at Debug level.
func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.Debug(msg, zapFields(fields...)...)
}

// Info logs a message at Info level.
func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.Info(msg, zapFields(fields...)...)
}

// Warn logs a message at Warning level.
func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.Warn(msg, zapFields(fields...)...)
}

// Error logs an error message at Error level.
func (l *ZapLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	zfs := zapFields(fields...)
	if err != nil {
		zfs = append(zfs, zap.Error(err))
	}
	l.logger.Error(msg, zfs...)
}
