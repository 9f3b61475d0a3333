package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/llm"
	"github.com/Veraticus/retail-insights/internal/notify"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OLLAMA_HOST", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Empty(t, cfg.Export.XLSXPath)
	assert.True(t, cfg.Charts.Enabled)
	assert.Equal(t, 12, cfg.Forecast.Horizon)
	assert.InDelta(t, 0.8, cfg.Forecast.IntervalWidth, 1e-12)
	assert.Equal(t, llm.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, llm.DefaultOllamaURL, cfg.LLM.Host)
	assert.Zero(t, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.Equal(t, notify.DefaultWebhookURL, cfg.Webhook.URL)
	assert.True(t, cfg.Webhook.Enabled)
	assert.Zero(t, cfg.Webhook.Timeout)
	assert.True(t, cfg.Summary)
	assert.False(t, cfg.Tracing)
	assert.False(t, cfg.Sheets.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /srv/walmart
export:
  dir: /srv/out
  xlsx_path: /srv/out/retail.xlsx
forecast:
  horizon: 26
llm:
  provider: OpenAI
  openai_api_key: sk-test
  timeout: 45s
  max_retries: 3
webhook:
  enabled: false
  timeout: 5s
logging:
  level: debug
  format: json
`), 0600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/walmart", cfg.Data.Dir)
	assert.Equal(t, "/srv/out/retail.xlsx", cfg.Export.XLSXPath)
	assert.Equal(t, 26, cfg.Forecast.Horizon)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.Webhook.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)

	llmCfg := cfg.LLMClientConfig()
	assert.Equal(t, "sk-test", llmCfg.APIKey)
	assert.Empty(t, llmCfg.BaseURL)
	assert.Equal(t, 3, cfg.RetryOptions().MaxAttempts)
}

func TestLoad_EnvFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_HOST", "gpu-box:11434")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-123")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.Host)
	assert.Equal(t, "anthropic-key", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLMClientConfig().BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{name: "unknown provider", key: "llm.provider", value: "bard", field: "Provider"},
		{name: "zero horizon", key: "forecast.horizon", value: 0, field: "Horizon"},
		{name: "interval width out of range", key: "forecast.interval_width", value: 1.5, field: "IntervalWidth"},
		{name: "bad log level", key: "logging.level", value: "verbose", field: "Level"},
		{name: "bad log format", key: "logging.format", value: "xml", field: "Format"},
		{name: "negative timeout", key: "webhook.timeout", value: -time.Second, field: "Timeout"},
		{name: "empty export dir", key: "export.dir", value: "", field: "Export.Dir"},
		{name: "zero retries", key: "llm.max_retries", value: 0, field: "MaxRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSheetsWriterConfig(t *testing.T) {
	cfg := Default()
	cfg.Sheets.ServiceAccountPath = "/keys/sa.json"
	cfg.Sheets.SpreadsheetID = "abc"

	sc := cfg.SheetsWriterConfig()
	assert.Equal(t, "/keys/sa.json", sc.ServiceAccountPath)
	assert.Equal(t, "abc", sc.SpreadsheetID)
	assert.Equal(t, 1000, sc.BatchSize)
	assert.NoError(t, sc.Validate())
}
