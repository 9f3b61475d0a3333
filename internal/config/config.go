package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/llm"
	"github.com/Veraticus/retail-insights/internal/notify"
	"github.com/Veraticus/retail-insights/internal/sheets"
)

// Config is the fully resolved run configuration.
type Config struct {
	Data     DataConfig
	Export   ExportConfig
	Charts   ChartsConfig
	Forecast ForecastConfig
	LLM      LLMConfig
	Webhook  WebhookConfig
	Sheets   SheetsConfig
	Logging  LoggingConfig
	Summary  bool
	Tracing  bool
	Progress bool
}

// DataConfig locates the input CSV files.
type DataConfig struct {
	Dir string `validate:"required"`
}

// ExportConfig controls file outputs.
type ExportConfig struct {
	Dir      string `validate:"required"`
	XLSXPath string
}

// ChartsConfig controls chart rendering.
type ChartsConfig struct {
	Dir     string `validate:"required_if=Enabled true"`
	Enabled bool
}

// ForecastConfig controls the forecaster.
type ForecastConfig struct {
	Horizon       int     `validate:"min=1,max=520"`
	IntervalWidth float64 `validate:"gt=0,lt=1"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider        string `validate:"oneof=ollama openai anthropic"`
	Model           string
	Host            string        `validate:"omitempty,url"`
	Timeout         time.Duration `validate:"gte=0"`
	MaxRetries      int           `validate:"min=1,max=10"`
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// WebhookConfig controls the post-run notification.
type WebhookConfig struct {
	URL     string        `validate:"omitempty,url"`
	Timeout time.Duration `validate:"gte=0"`
	Enabled bool
}

// SheetsConfig holds optional Google Sheets publishing settings.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	Enabled            bool
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// Default returns the configuration used when no file, flag or env var overrides it.
func Default() Config {
	return Config{
		Data:     DataConfig{Dir: "data"},
		Export:   ExportConfig{Dir: "exports"},
		Charts:   ChartsConfig{Dir: "charts", Enabled: true},
		Forecast: ForecastConfig{Horizon: 12, IntervalWidth: 0.8},
		LLM: LLMConfig{
			Provider:   llm.ProviderOllama,
			Model:      "llama2",
			Host:       llm.DefaultOllamaURL,
			MaxRetries: 1,
		},
		Webhook:  WebhookConfig{URL: notify.DefaultWebhookURL, Enabled: true},
		Sheets:   SheetsConfig{SpreadsheetName: sheets.DefaultSpreadsheetName},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
		Summary:  true,
		Tracing:  false,
		Progress: true,
	}
}

// SetDefaults registers every default with v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data.dir", d.Data.Dir)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.xlsx_path", d.Export.XLSXPath)
	v.SetDefault("charts.dir", d.Charts.Dir)
	v.SetDefault("charts.enabled", d.Charts.Enabled)
	v.SetDefault("forecast.horizon", d.Forecast.Horizon)
	v.SetDefault("forecast.interval_width", d.Forecast.IntervalWidth)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.host", "")
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("webhook.url", d.Webhook.URL)
	v.SetDefault("webhook.enabled", d.Webhook.Enabled)
	v.SetDefault("webhook.timeout", d.Webhook.Timeout)
	v.SetDefault("summary.enabled", d.Summary)
	v.SetDefault("tracing.enabled", d.Tracing)
	v.SetDefault("sheets.enabled", d.Sheets.Enabled)
	v.SetDefault("sheets.spreadsheet_name", d.Sheets.SpreadsheetName)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("progress", d.Progress)
}

// Load resolves the configuration from v, falling back to well-known
// environment variables for credentials and hosts, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	cfg.Data.Dir = ExpandPath(v.GetString("data.dir"))
	cfg.Export.Dir = ExpandPath(v.GetString("export.dir"))
	cfg.Export.XLSXPath = ExpandPath(v.GetString("export.xlsx_path"))
	cfg.Charts.Dir = ExpandPath(v.GetString("charts.dir"))
	cfg.Charts.Enabled = v.GetBool("charts.enabled")
	cfg.Forecast.Horizon = v.GetInt("forecast.horizon")
	cfg.Forecast.IntervalWidth = v.GetFloat64("forecast.interval_width")

	cfg.LLM.Provider = strings.ToLower(v.GetString("llm.provider"))
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.Host = v.GetString("llm.host")
	cfg.LLM.Timeout = v.GetDuration("llm.timeout")
	cfg.LLM.MaxRetries = v.GetInt("llm.max_retries")
	cfg.LLM.OpenAIAPIKey = v.GetString("llm.openai_api_key")
	cfg.LLM.AnthropicAPIKey = v.GetString("llm.anthropic_api_key")
	applyLLMEnv(&cfg.LLM)

	cfg.Webhook.URL = v.GetString("webhook.url")
	cfg.Webhook.Enabled = v.GetBool("webhook.enabled")
	cfg.Webhook.Timeout = v.GetDuration("webhook.timeout")

	cfg.Summary = v.GetBool("summary.enabled")
	cfg.Tracing = v.GetBool("tracing.enabled")
	cfg.Progress = v.GetBool("progress")

	cfg.Sheets = loadSheets(v)

	cfg.Logging.Level = strings.ToLower(v.GetString("logging.level"))
	cfg.Logging.Format = strings.ToLower(v.GetString("logging.format"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLLMEnv fills blanks from the environment variables each provider's own tooling reads.
func applyLLMEnv(c *LLMConfig) {
	if c.Host == "" && c.Provider == llm.ProviderOllama {
		c.Host = os.Getenv("OLLAMA_HOST")
		if c.Host != "" && !strings.Contains(c.Host, "://") {
			c.Host = "http://" + c.Host
		}
	}
	if c.Host == "" && c.Provider == llm.ProviderOllama {
		c.Host = llm.DefaultOllamaURL
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// loadSheets reads sheets.* keys, then GOOGLE_SHEETS_* env vars for anything unset.
func loadSheets(v *viper.Viper) SheetsConfig {
	s := SheetsConfig{
		Enabled:            v.GetBool("sheets.enabled"),
		ClientID:           v.GetString("sheets.client_id"),
		ClientSecret:       v.GetString("sheets.client_secret"),
		RefreshToken:       v.GetString("sheets.refresh_token"),
		TokenFile:          ExpandPath(v.GetString("sheets.token_file")),
		ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
		SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
		SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
	}

	if s.ServiceAccountPath == "" {
		s.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if s.ClientID == "" {
		s.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if s.ClientSecret == "" {
		s.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if s.RefreshToken == "" {
		s.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if s.SpreadsheetID == "" {
		s.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if s.SpreadsheetName == "" {
		s.SpreadsheetName = sheets.DefaultSpreadsheetName
	}
	return s
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// LLMClientConfig builds the provider configuration for llm.NewClient.
func (c *Config) LLMClientConfig() llm.Config {
	cfg := llm.Config{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		Timeout:  c.LLM.Timeout,
	}
	switch c.LLM.Provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = c.LLM.OpenAIAPIKey
	case llm.ProviderAnthropic:
		cfg.APIKey = c.LLM.AnthropicAPIKey
	default:
		cfg.BaseURL = c.LLM.Host
	}
	return cfg
}

// RetryOptions returns the retry policy for language model requests.
func (c *Config) RetryOptions() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  c.LLM.MaxRetries,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// SheetsWriterConfig converts the sheets settings for sheets.NewWriter.
func (c *Config) SheetsWriterConfig() sheets.Config {
	sc := sheets.DefaultConfig()
	sc.ClientID = c.Sheets.ClientID
	sc.ClientSecret = c.Sheets.ClientSecret
	sc.RefreshToken = c.Sheets.RefreshToken
	sc.TokenFile = c.Sheets.TokenFile
	sc.ServiceAccountPath = c.Sheets.ServiceAccountPath
	sc.SpreadsheetID = c.Sheets.SpreadsheetID
	sc.SpreadsheetName = c.Sheets.SpreadsheetName
	return sc
}
