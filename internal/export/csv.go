// Package export writes result tables to CSV files and an optional XLSX workbook.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Veraticus/retail-insights/internal/model"
)

// ErrMissingDir is returned when the export directory does not exist.
var ErrMissingDir = errors.New("export directory does not exist")

// FileName is the CSV file name for a table.
func FileName(t model.Table) string {
	return t.Name() + ".csv"
}

// CheckDir verifies that dir exists and is a directory. It is never created.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingDir, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat export directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrMissingDir, dir)
	}
	return nil
}

// WriteCSV writes the table with its header row to dir/<name>.csv, replacing
// any existing file, and returns the written path.
func WriteCSV(dir string, t model.Table) (string, error) {
	if err := CheckDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(t))
	file, err := os.Create(path) //nolint:gosec // path is built from the configured export dir
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Header()); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(t.Records()); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write records: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// WriteAll writes every table in order. It stops at the first failure; files
// already written are left in place.
func WriteAll(dir string, tables ...model.Table) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path, err := WriteCSV(dir, t)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadCSV loads an exported file back as a generic table named after the file.
func ReadCSV(path string) (*model.GenericTable, error) {
	file, err := os.Open(path) //nolint:gosec // reading back our own export
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return &model.GenericTable{Title: name, Columns: records[0], Rows: records[1:]}, nil
}
