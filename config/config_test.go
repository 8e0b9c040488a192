package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JOURNAL_OWNER", "user-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "./data/trade_journal.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, "user-1", cfg.Owner)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JOURNAL_OWNER", "user-2")
	t.Setenv("DB_PATH", "/tmp/journal.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/journal.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDev)
	assert.Equal(t, "user-2", cfg.Owner)
}

func TestLoadConfig_MissingOwner(t *testing.T) {
	t.Setenv("JOURNAL_OWNER", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOURNAL_OWNER")
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	t.Setenv("JOURNAL_OWNER", "user-1")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
