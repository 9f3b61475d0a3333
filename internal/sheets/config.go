// Package sheets publishes result tables to a Google Sheets spreadsheet.
package sheets

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSpreadsheetName is used when a new spreadsheet is created.
const DefaultSpreadsheetName = "Retail Insights"

var (
	// ErrNoAuth is returned when neither OAuth2 nor a service account is configured.
	ErrNoAuth = errors.New("no authentication method configured")
	// ErrConflictingAuth is returned when both OAuth2 and a service account are configured.
	ErrConflictingAuth = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
)

// Config controls where and how result tables are published.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string // read when RefreshToken is empty
	ServiceAccountPath string
	SpreadsheetID      string // empty creates a new spreadsheet on every publish
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns publishing defaults. Credentials are left empty.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  DefaultSpreadsheetName,
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch oauth, sa := c.hasOAuth(), c.ServiceAccountPath != ""; {
	case !oauth && !sa:
		errs = append(errs, ErrNoAuth)
	case oauth && sa:
		errs = append(errs, ErrConflictingAuth)
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", c.BatchSize))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry attempts cannot be negative, got %d", c.RetryAttempts))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay cannot be negative, got %s", c.RetryDelay))
	}

	return errors.Join(errs...)
}
