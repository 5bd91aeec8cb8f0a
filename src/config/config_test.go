package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockbot/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Run("uses defaults without a settings file", func(t *testing.T) {
		cfg, err := config.LoadConfig(t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, config.API, cfg.Service.Type)
		assert.Equal(t, "8000", cfg.Service.Port)
		assert.Equal(t, 1000.0, cfg.Valuation.DefaultBalance)
		assert.Equal(t, 8, cfg.Valuation.MaxConcurrentLookups)
		assert.Equal(t, 3, cfg.ExternalClients.YFinance.MaxAttempts)
		assert.Equal(t, 200*time.Millisecond, cfg.ExternalClients.YFinance.BaseBackoff)
		assert.Equal(t, "0,30 9-16 * * 1-5", cfg.Market.RefreshCron)
	})

	t.Run("merges the environment file over the base file", func(t *testing.T) {
		dir := writeSettings(t, map[string]string{
			"appsettings.yaml": "service:\n  type: API\n  port: \"9000\"\nvaluation:\n  defaultBalance: 500\n",
			"appsettings.worker.yaml": "service:\n  type: WORKER\n",
		})

		cfg, err := config.LoadConfig(dir, "WORKER")
		require.NoError(t, err)
		assert.Equal(t, config.WORKER, cfg.Service.Type)
		assert.Equal(t, "9000", cfg.Service.Port)
		assert.Equal(t, 500.0, cfg.Valuation.DefaultBalance)
	})

	t.Run("environment variables override files", func(t *testing.T) {
		dir := writeSettings(t, map[string]string{
			"appsettings.yaml": "market:\n  timezone: Europe/London\n",
		})
		t.Setenv("STOCKBOT_MARKET_TIMEZONE", "Asia/Tokyo")

		cfg, err := config.LoadConfig(dir, "")
		require.NoError(t, err)
		assert.Equal(t, "Asia/Tokyo", cfg.Market.Timezone)
	})

	t.Run("fails on malformed yaml", func(t *testing.T) {
		dir := writeSettings(t, map[string]string{"appsettings.yaml": "service: [unclosed\n"})
		_, err := config.LoadConfig(dir, "")
		assert.Error(t, err)
	})
}

func TestMarketLocation(t *testing.T) {
	assert.Equal(t, "America/New_York", config.MarketConfig{Timezone: "America/New_York"}.Location().String())
	assert.Equal(t, time.UTC, config.MarketConfig{}.Location())
	assert.Equal(t, time.UTC, config.MarketConfig{Timezone: "Mars/Olympus"}.Location())
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretValue(id string) (string, error) {
	value, ok := f[id]
	if !ok {
		return "", errors.New("secret not found")
	}
	return value, nil
}

func TestResolveSecrets(t *testing.T) {
	t.Run("fills the discord token from the secret store", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Secrets.DiscordTokenARN = "arn:token"
		require.NoError(t, config.ResolveSecrets(cfg, fakeSecrets{"arn:token": "secret-token"}))
		assert.Equal(t, "secret-token", cfg.ExternalClients.Discord.Token)
	})

	t.Run("keeps an explicit token", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Secrets.DiscordTokenARN = "arn:token"
		cfg.ExternalClients.Discord.Token = "explicit"
		require.NoError(t, config.ResolveSecrets(cfg, fakeSecrets{}))
		assert.Equal(t, "explicit", cfg.ExternalClients.Discord.Token)
	})

	t.Run("reports lookup failures", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Secrets.DiscordTokenARN = "arn:missing"
		assert.Error(t, config.ResolveSecrets(cfg, fakeSecrets{}))
	})
}
