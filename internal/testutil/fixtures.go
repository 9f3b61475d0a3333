// Package testutil provides test fixtures for the retail analytics pipeline.
// It writes small, deterministic input datasets and sets up in-memory storage with cleanup.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/retail-insights/internal/loader"
)

// FixtureStore describes one store of a fixture dataset.
type FixtureStore struct {
	Type string
	ID   int
	Size int
}

// Fixture describes a synthetic dataset: every store reports every department every week.
type Fixture struct {
	Start  time.Time
	Sales  func(store, dept, week int) float64
	Stores []FixtureStore
	Weeks  int
	Depts  int
}

// DefaultFixture returns two stores with eight weeks of data each, starting
// Friday 2012-02-03 so that every date falls in February or March.
func DefaultFixture() Fixture {
	return Fixture{
		Start: time.Date(2012, 2, 3, 0, 0, 0, 0, time.UTC),
		Stores: []FixtureStore{
			{ID: 1, Type: "A", Size: 151315},
			{ID: 2, Type: "B", Size: 202307},
		},
		Weeks: 8,
		Depts: 1,
		Sales: func(store, _, week int) float64 {
			return float64(store*1000 + week*100)
		},
	}
}

// Dates returns the weekly observation dates of the fixture.
func (f Fixture) Dates() []time.Time {
	dates := make([]time.Time, f.Weeks)
	for w := range dates {
		dates[w] = f.Start.AddDate(0, 0, 7*w)
	}
	return dates
}

// SalesCSV renders the fixture's train.csv content.
func (f Fixture) SalesCSV() string {
	var b strings.Builder
	b.WriteString("Store,Dept,Date,Weekly_Sales,IsHoliday\n")
	for _, store := range f.Stores {
		for dept := 1; dept <= f.Depts; dept++ {
			for w, date := range f.Dates() {
				fmt.Fprintf(&b, "%d,%d,%s,%.2f,%s\n",
					store.ID, dept, date.Format("2006-01-02"), f.Sales(store.ID, dept, w), holiday(date))
			}
		}
	}
	return b.String()
}

// FeaturesCSV renders the fixture's features.csv content.
func (f Fixture) FeaturesCSV() string {
	var b strings.Builder
	b.WriteString("Store,Date,Temperature,Fuel_Price,MarkDown1,CPI,Unemployment,IsHoliday\n")
	for _, store := range f.Stores {
		for w, date := range f.Dates() {
			fmt.Fprintf(&b, "%d,%s,%.2f,%.3f,NA,211.0963582,8.106,%s\n",
				store.ID, date.Format("2006-01-02"), 40.0+float64(w), 2.572+0.01*float64(w), holiday(date))
		}
	}
	return b.String()
}

// StoresCSV renders the fixture's stores.csv content.
func (f Fixture) StoresCSV() string {
	var b strings.Builder
	b.WriteString("Store,Type,Size\n")
	for _, store := range f.Stores {
		fmt.Fprintf(&b, "%d,%s,%d\n", store.ID, store.Type, store.Size)
	}
	return b.String()
}

// Write writes the three input files into a fresh temp directory and returns it.
func (f Fixture) Write(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		loader.SalesFile:    f.SalesCSV(),
		loader.FeaturesFile: f.FeaturesCSV(),
		loader.StoresFile:   f.StoresCSV(),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write fixture %s: %v", name, err)
		}
	}
	return dir
}

// Load writes the fixture and loads it back as a dataset.
func (f Fixture) Load(t *testing.T) *loader.Dataset {
	t.Helper()

	dataset, err := loader.LoadDataset(f.Write(t))
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return dataset
}

// Super Bowl week is flagged as a holiday in the source data.
func holiday(date time.Time) string {
	if date.Month() == time.February && date.Day() >= 8 && date.Day() <= 14 {
		return "TRUE"
	}
	return "FALSE"
}
