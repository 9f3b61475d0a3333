package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	oauth := func(mod func(*Config)) Config {
		c := DefaultConfig()
		c.ClientID, c.ClientSecret, c.RefreshToken = "client", "secret", "refresh"
		if mod != nil {
			mod(&c)
		}
		return c
	}

	tests := []struct {
		wantErr  error
		name     string
		contains string
		config   Config
	}{
		{name: "oauth with refresh token", config: oauth(nil)},
		{name: "oauth with token file", config: oauth(func(c *Config) { c.RefreshToken, c.TokenFile = "", "/tmp/token.json" })},
		{name: "service account", config: Config{ServiceAccountPath: "/keys/sa.json", BatchSize: 10}},
		{name: "no credentials", config: DefaultConfig(), wantErr: ErrNoAuth},
		{name: "secret missing", config: oauth(func(c *Config) { c.ClientSecret = "" }), wantErr: ErrNoAuth},
		{name: "both methods", config: oauth(func(c *Config) { c.ServiceAccountPath = "/keys/sa.json" }), wantErr: ErrConflictingAuth},
		{name: "zero batch size", config: oauth(func(c *Config) { c.BatchSize = 0 }), contains: "batch size must be positive, got 0"},
		{name: "negative retry delay", config: oauth(func(c *Config) { c.RetryDelay = -time.Second }), contains: "retry delay cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil && tt.contains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	err := (&Config{RetryAttempts: -1}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAuth)
	assert.ErrorContains(t, err, "batch size must be positive")
	assert.ErrorContains(t, err, "retry attempts cannot be negative")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.True(t, cfg.EnableFormatting)
}
