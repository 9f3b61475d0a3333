package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/retail-insights/internal/loader"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidTable = errors.New("invalid table")
	ErrInvalidDate  = errors.New("invalid date value")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTable checks that a loaded table can be registered.
func validateTable(table *loader.Table) error {
	if table == nil {
		return fmt.Errorf("%w: table", ErrNilParameter)
	}
	if strings.TrimSpace(table.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTable)
	}
	if len(table.Columns) == 0 {
		return fmt.Errorf("%w: %s has no columns", ErrInvalidTable, table.Name)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return fmt.Errorf("%w: %s row %d has %d values, want %d",
				ErrInvalidTable, table.Name, i+1, len(row), len(table.Columns))
		}
	}
	return nil
}
