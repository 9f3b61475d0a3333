// Package model defines the result tables produced by the analytics pipeline.
package model

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the layout used for calendar dates in every exported table.
const DateLayout = "2006-01-02"

// Table is a named, fully materialized result with a header row.
type Table interface {
	Name() string
	Header() []string
	Records() [][]string
}

// FormatFloat renders a float with the shortest representation that parses back to the same value.
// NaN marks a missing value and renders as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// GenericTable is a result table with untyped string cells, used for ad-hoc queries.
type GenericTable struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Name returns the table title.
func (g *GenericTable) Name() string { return g.Title }

// Header returns the column names.
func (g *GenericTable) Header() []string { return g.Columns }

// Records returns the rows.
func (g *GenericTable) Records() [][]string { return g.Rows }
