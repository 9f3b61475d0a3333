// Package loader reads delimited data files into typed in-memory tables.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names of the three input datasets, relative to the data directory.
const (
	SalesFile    = "train.csv"
	FeaturesFile = "features.csv"
	StoresFile   = "stores.csv"
)

// Registered table names.
const (
	SalesTable    = "sales"
	FeaturesTable = "features"
	StoresTable   = "stores"
)

var (
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("file has no header row")
	// ErrDuplicateColumn is returned when a header repeats a column name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Kind is the inferred storage type of a column.
type Kind int

// Column kinds, from most to least specific.
const (
	KindInteger Kind = iota
	KindReal
	KindBoolean
	KindText
)

// SQLType returns the column type used when registering the table.
func (k Kind) SQLType() string {
	switch k {
	case KindInteger, KindBoolean:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// Column describes one column of a loaded table.
type Column struct {
	Name string
	Kind Kind
}

// Table is a loaded dataset. Values are already converted to their column's kind;
// nil marks a missing cell.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Dataset groups the three input tables.
type Dataset struct {
	Sales    *Table
	Features *Table
	Stores   *Table
}

// Tables returns the dataset tables in registration order.
func (d *Dataset) Tables() []*Table {
	return []*Table{d.Sales, d.Features, d.Stores}
}

// LoadDataset reads the sales, features and stores files from dir.
func LoadDataset(dir string) (*Dataset, error) {
	sales, err := ReadTable(filepath.Join(dir, SalesFile), SalesTable)
	if err != nil {
		return nil, err
	}
	features, err := ReadTable(filepath.Join(dir, FeaturesFile), FeaturesTable)
	if err != nil {
		return nil, err
	}
	stores, err := ReadTable(filepath.Join(dir, StoresFile), StoresTable)
	if err != nil {
		return nil, err
	}
	return &Dataset{Sales: sales, Features: features, Stores: stores}, nil
}

// ReadTable reads a CSV file with a header row and infers column kinds.
func ReadTable(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := Parse(f, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// Parse reads CSV content from r into a table called name.
func Parse(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if col == "" {
			col = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[col] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
		}
		seen[col] = true
		header[i] = col
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(header))
	for i, col := range header {
		columns[i] = Column{Name: col, Kind: inferKind(raw, i)}
	}

	rows := make([][]any, len(raw))
	for r, record := range raw {
		row := make([]any, len(columns))
		for c, col := range columns {
			row[c] = convert(record[c], col.Kind)
		}
		rows[r] = row
	}

	return &Table{Name: name, Columns: columns, Rows: rows}, nil
}

// isMissing reports whether a cell counts as a missing value.
func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// inferKind picks the most specific kind every non-missing value of column c satisfies.
func inferKind(raw [][]string, c int) Kind {
	isInt, isReal, isBool := true, true, true
	present := false

	for _, record := range raw {
		v := strings.TrimSpace(record[c])
		if isMissing(v) {
			continue
		}
		present = true
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isReal {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isReal = false
			}
		}
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if !isInt && !isReal && !isBool {
			return KindText
		}
	}

	switch {
	case !present:
		return KindText
	case isInt:
		return KindInteger
	case isReal:
		return KindReal
	case isBool:
		return KindBoolean
	default:
		return KindText
	}
}

func convert(s string, kind Kind) any {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}
	switch kind {
	case KindInteger:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case KindReal:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case KindBoolean:
		b, _ := parseBool(s)
		if b {
			return int64(1)
		}
		return int64(0)
	default:
		return s
	}
}
