package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"NIXTLA_API_KEY", "NIXTLA_BASE_URL", "NILLION_BASE_URL", "NILLION_API_KEY",
		"ANALYSIS_API_URL", "TELEGRAM_TOKEN", "SERIES_PATH", "SERIES_BACKEND",
		"SQLITE_PATH", "LOG_LEVEL", "HTTPS_PROXY", "CHAT_PROVIDER", "CHAT_MODEL",
		"GEMINI_API_KEY", "PRICE_SOURCE", "HTTP_PORT", "TELEGRAM_REPORT_CHAT_ID",
		"RUN_ON_START", "CONFIG_PATH",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "csv", cfg.Series.Backend)
	assert.Equal(t, "data/bitcoin.csv", cfg.Series.Path)
	assert.Equal(t, "coingecko", cfg.Collector.Source)
	assert.Equal(t, 3010, cfg.HTTP.Port)
	assert.Equal(t, "openai", cfg.Chat.Provider)
	assert.Equal(t, 60*time.Second, cfg.Chat.Timeout)
	assert.True(t, cfg.Schedule.Enabled)
	assert.Equal(t, "0 5 0 * * *", cfg.Schedule.DailyCron)
	assert.Equal(t, []string{"bitcoin", "btc"}, cfg.Intent.TopicKeywords)
	assert.Equal(t, []string{"price", "prediction", "forecast", "trend", "signal"}, cfg.Intent.ActionKeywords)
	assert.Equal(t, 16, cfg.Telegram.MaxConcurrent)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
series:
  backend: sqlite
  sqlite_path: /tmp/x.db
schedule:
  enabled: false
forecast:
  api_key: from-yaml
  timeout: 15s
intent:
  topic_keywords: [eth]
proxy: http://proxy:3128
`)
	t.Setenv("NIXTLA_API_KEY", "from-env")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Series.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Series.SQLitePath)
	assert.False(t, cfg.Schedule.Enabled, "explicit false must survive defaults")
	assert.True(t, cfg.Schedule.RunOnStart)
	assert.Equal(t, "from-env", cfg.Forecast.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Forecast.Timeout)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, []string{"eth"}, cfg.Intent.TopicKeywords)
	assert.Equal(t, "http://proxy:3128", cfg.Collector.ProxyURL)
	assert.Equal(t, "http://proxy:3128", cfg.Telegram.ProxyURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"bad backend", "series:\n  backend: parquet\n", nil},
		{"bad price source", "", map[string]string{"PRICE_SOURCE": "kraken"}},
		{"bad port", "", map[string]string{"HTTP_PORT": "eighty"}},
		{"bad yaml", "series: [", nil},
		{"bad log level", "", map[string]string{"LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidateBot_ListsEveryMissingValue(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	err = cfg.ValidateBot()
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Equal(t,
		"missing required configuration: ANALYSIS_API_URL, NILLION_API_KEY, NILLION_BASE_URL, TELEGRAM_TOKEN",
		err.Error())

	cfg.Chat.Provider = "gemini"
	err = cfg.ValidateBot()
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.NotContains(t, err.Error(), "NILLION")
}

func TestValidateServe(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.ValidateServe(), ErrMissingConfig)

	cfg.Forecast.APIKey = "k"
	assert.NoError(t, cfg.ValidateServe())
	assert.NoError(t, cfg.ValidateUpdate())
}

func TestPath(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, DefaultPath, Path(""))
	t.Setenv("CONFIG_PATH", "/etc/sentinel.yaml")
	assert.Equal(t, "/etc/sentinel.yaml", Path(""))
	assert.Equal(t, "x.yaml", Path("x.yaml"))
}
