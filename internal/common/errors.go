// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Pipeline stage errors. Each stage wraps its underlying failure with one of these.
var (
	ErrLoad     = errors.New("load failed")
	ErrQuery    = errors.New("query failed")
	ErrChart    = errors.New("chart rendering failed")
	ErrForecast = errors.New("forecast failed")
	ErrSummary  = errors.New("summary failed")
	ErrExport   = errors.New("export failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the terminal alongside the underlying cause.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// StageError wraps err with the sentinel for the stage it happened in.
func StageError(stage error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", stage, err)
}
