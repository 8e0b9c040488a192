package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &ZapLogger{logger: zap.New(core)}, logs
}

func TestNew_LevelValidation(t *testing.T) {
	l, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	_ = l.Sync()

	_, err = New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	// Empty level defaults to info.
	l, err = New(Config{})
	require.NoError(t, err)
	_ = l.Sync()
}

func TestZapLogger_FieldsAreSorted(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	ctx := context.Background()

	l.Info(ctx, "trade inserted", map[string]interface{}{
		"volume": 100,
		"ticker": "AAPL",
		"side":   "BUY",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "trade inserted", entries[0].Message)
	require.Len(t, entries[0].Context, 3)
	assert.Equal(t, "side", entries[0].Context[0].Key)
	assert.Equal(t, "ticker", entries[0].Context[1].Key)
	assert.Equal(t, "volume", entries[0].Context[2].Key)
}

func TestZapLogger_ErrorAttachesError(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	ctx := context.Background()

	l.Error(ctx, errors.New("disk full"), "write failed", map[string]interface{}{"path": "/tmp/x"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/tmp/x", fields["path"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestZapLogger_NoFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	ctx := context.Background()

	l.Debug(ctx, "plain message")
	l.Warn(ctx, "another one")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Context)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info(context.Background(), "dropped")
	assert.NoError(t, l.Sync())
}
