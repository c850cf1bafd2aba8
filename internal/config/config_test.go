package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  run_mode: longpoll
providers:
  skyscanner_key: sk
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "sk", cfg.Providers.SkyscannerKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "from-file"
`)
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"

	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "https://api.skyscanner.net", cfg.Providers.SkyscannerURL)
	assert.Equal(t, "https://api.booking.com", cfg.Providers.BookingURL)
	assert.Equal(t, "https://maps.googleapis.com", cfg.Providers.GoogleMapsURL)
	assert.Equal(t, 10, cfg.Providers.TimeoutSeconds)
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Telegram.RunMode = "Polling"

	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeRequiresToken(t *testing.T) {
	err := Normalize(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram token is required")
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Telegram.RunMode = RunModeWebhook

	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.url is required")

	cfg.Webhook.URL = "https://bot.example.com/hook"
	err = Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.listen is required")

	cfg.Webhook.Listen = "0.0.0.0"
	err = Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.port must be > 0")

	cfg.Webhook.Port = 8443
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRejectsUnknownRunMode(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Telegram.RunMode = "carrier-pigeon"

	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telegram.run_mode")
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Database.Host = "localhost"
	cfg.Database.User = "travel"
	cfg.Database.Name = "travelbot"

	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
}

func TestNormalizeDatabaseRequiresUserAndName(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Database.Host = "localhost"

	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user and database.name are required")
}
