package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN", "ADMIN_CHAT_ID"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "-1001234567890")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(-1001234567890), cfg.Telegram.AdminChatID)
	assert.Equal(t, 60, cfg.Telegram.PollTimeout)
	assert.Equal(t, DefaultWelcome, cfg.Messages.Welcome)
	assert.Equal(t, DefaultConfirmation, cfg.Messages.Confirmation)
	assert.Equal(t, DefaultRestartButton, cfg.Messages.RestartButton)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  token: "file-token"
  admin_chat_id: -42
  poll_timeout: 30
messages:
  confirmation: "Got it"
metrics:
  addr: ":9100"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, int64(-42), cfg.Telegram.AdminChatID)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.Equal(t, "Got it", cfg.Messages.Confirmation)
	assert.Equal(t, DefaultWelcome, cfg.Messages.Welcome)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  token: file\n  admin_chat_id: 1\n"), 0o600))
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("ADMIN_CHAT_ID", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(7), cfg.Telegram.AdminChatID)
}

func TestLoadConfigMissingRequiredValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{name: "no token", env: map[string]string{"ADMIN_CHAT_ID": "5"}, field: "TELEGRAM_BOT_TOKEN"},
		{name: "no admin chat", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t"}, field: "ADMIN_CHAT_ID"},
		{name: "malformed admin chat", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "ADMIN_CHAT_ID": "@support"}, field: "ADMIN_CHAT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
