package model

import (
	"time"
)

// StoreAverage is the average weekly sales of one store. The store id keeps the
// text it had in the input, and the average is NaN when every sale was missing.
type StoreAverage struct {
	Store          string
	AvgWeeklySales float64
}

// StoreAverages is ordered descending by average.
type StoreAverages []StoreAverage

// Name implements Table.
func (StoreAverages) Name() string { return "avg_sales_by_store" }

// Header implements Table.
func (StoreAverages) Header() []string { return []string{"Store", "AvgWeeklySales"} }

// Records implements Table.
func (s StoreAverages) Records() [][]string {
	records := make([][]string, 0, len(s))
	for _, row := range s {
		records = append(records, []string{row.Store, FormatFloat(row.AvgWeeklySales)})
	}
	return records
}

// Head returns at most the first n rows. A non-positive n keeps every row.
func (s StoreAverages) Head(n int) StoreAverages {
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

// TypeAverage is the average weekly sales across all stores of one type.
type TypeAverage struct {
	Type     string
	AvgSales float64
}

// TypeAverages is ordered descending by average.
type TypeAverages []TypeAverage

// Name implements Table.
func (TypeAverages) Name() string { return "avg_sales_by_type" }

// Header implements Table.
func (TypeAverages) Header() []string { return []string{"Type", "AvgSales"} }

// Records implements Table.
func (t TypeAverages) Records() [][]string {
	records := make([][]string, 0, len(t))
	for _, row := range t {
		records = append(records, []string{row.Type, FormatFloat(row.AvgSales)})
	}
	return records
}

// MonthlyTotal is the summed sales of one calendar month.
type MonthlyTotal struct {
	YearMonth  string
	TotalSales float64
}

// MonthlyTotals is ordered ascending by month.
type MonthlyTotals []MonthlyTotal

// Name implements Table.
func (MonthlyTotals) Name() string { return "monthly_sales" }

// Header implements Table.
func (MonthlyTotals) Header() []string { return []string{"YearMonth", "TotalSales"} }

// Records implements Table.
func (m MonthlyTotals) Records() [][]string {
	records := make([][]string, 0, len(m))
	for _, row := range m {
		records = append(records, []string{row.YearMonth, FormatFloat(row.TotalSales)})
	}
	return records
}

// WeeklyPoint is the summed sales of all stores on one date.
type WeeklyPoint struct {
	Date  time.Time
	Sales float64
}

// WeeklySeries is ordered ascending by date.
type WeeklySeries []WeeklyPoint

// Name implements Table.
func (WeeklySeries) Name() string { return "weekly_sales" }

// Header implements Table.
func (WeeklySeries) Header() []string { return []string{"ds", "y"} }

// Records implements Table.
func (w WeeklySeries) Records() [][]string {
	records := make([][]string, 0, len(w))
	for _, p := range w {
		records = append(records, []string{FormatDate(p.Date), FormatFloat(p.Sales)})
	}
	return records
}

// Last returns the latest observation date, or the zero time for an empty series.
func (w WeeklySeries) Last() time.Time {
	if len(w) == 0 {
		return time.Time{}
	}
	return w[len(w)-1].Date
}
