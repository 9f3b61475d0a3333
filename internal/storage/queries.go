package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Veraticus/retail-insights/internal/model"
)

const queryAverageByStore = `
SELECT s."Store", ROUND(AVG(sa."Weekly_Sales"), 2) AS AvgWeeklySales
FROM sales sa
JOIN stores s ON sa."Store" = s."Store"
GROUP BY s."Store"
ORDER BY AvgWeeklySales DESC, s."Store"`

const queryAverageByType = `
SELECT st."Type", ROUND(AVG(s."Weekly_Sales"), 2) AS AvgSales
FROM sales s
JOIN stores st ON s."Store" = st."Store"
GROUP BY st."Type"
ORDER BY AvgSales DESC, st."Type"`

const queryMonthlySales = `
SELECT strftime('%Y-%m', s."Date") AS YearMonth,
       ROUND(SUM(s."Weekly_Sales"), 2) AS TotalSales
FROM sales s
GROUP BY YearMonth
ORDER BY YearMonth`

const queryWeeklySales = `
SELECT date("Date") AS ds,
       SUM("Weekly_Sales") AS y
FROM sales
GROUP BY ds
ORDER BY ds`

// AverageSalesByStore returns the average weekly sales per store, highest first.
func (s *SQLiteStorage) AverageSalesByStore(ctx context.Context) (model.StoreAverages, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryAverageByStore)
	if err != nil {
		return nil, fmt.Errorf("failed to query average sales by store: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result model.StoreAverages
	for rows.Next() {
		var (
			store sql.NullString
			avg   sql.NullFloat64
		)
		if err := rows.Scan(&store, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan store average: %w", err)
		}
		result = append(result, model.StoreAverage{Store: store.String, AvgWeeklySales: orNaN(avg)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate store averages: %w", err)
	}
	return result, nil
}

// AverageSalesByType returns the average weekly sales per store type, highest first.
func (s *SQLiteStorage) AverageSalesByType(ctx context.Context) (model.TypeAverages, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryAverageByType)
	if err != nil {
		return nil, fmt.Errorf("failed to query average sales by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result model.TypeAverages
	for rows.Next() {
		var (
			storeType sql.NullString
			avg       sql.NullFloat64
		)
		if err := rows.Scan(&storeType, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan type average: %w", err)
		}
		result = append(result, model.TypeAverage{Type: storeType.String, AvgSales: orNaN(avg)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate type averages: %w", err)
	}
	return result, nil
}

// MonthlySales returns total sales per calendar month, oldest first.
func (s *SQLiteStorage) MonthlySales(ctx context.Context) (model.MonthlyTotals, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryMonthlySales)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result model.MonthlyTotals
	for rows.Next() {
		var (
			month sql.NullString
			total sql.NullFloat64
		)
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		// strftime yields NULL for values it cannot read as a date.
		if !month.Valid {
			return nil, fmt.Errorf("%w: Date column of sales", ErrInvalidDate)
		}
		result = append(result, model.MonthlyTotal{YearMonth: month.String, TotalSales: orNaN(total)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly totals: %w", err)
	}
	return result, nil
}

// WeeklySales returns total sales across all stores per date, oldest first.
func (s *SQLiteStorage) WeeklySales(ctx context.Context) (model.WeeklySeries, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryWeeklySales)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result model.WeeklySeries
	for rows.Next() {
		var (
			ds    sql.NullString
			total sql.NullFloat64
		)
		if err := rows.Scan(&ds, &total); err != nil {
			return nil, fmt.Errorf("failed to scan weekly total: %w", err)
		}
		if !ds.Valid {
			return nil, fmt.Errorf("%w: Date column of sales", ErrInvalidDate)
		}
		date, err := time.Parse(model.DateLayout, ds.String)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, ds.String)
		}
		// A date whose sales are all missing has no observation to fit.
		if !total.Valid {
			continue
		}
		result = append(result, model.WeeklyPoint{Date: date, Sales: total.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly totals: %w", err)
	}
	return result, nil
}

// orNaN maps a NULL aggregate to NaN, the missing-value marker of the result tables.
func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// Query runs a read-only statement and returns its rows as text.
func (s *SQLiteStorage) Query(ctx context.Context, query string) (*model.GenericTable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(query, "query"); err != nil {
		return nil, err
	}

	// The pool holds a single connection, so the pragma applies to the query below.
	if _, err := s.db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("failed to enter read-only mode: %w", err)
	}
	defer func() { _, _ = s.db.ExecContext(context.Background(), "PRAGMA query_only = OFF") }()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &model.GenericTable{Title: "query", Columns: columns}
	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return result, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return model.FormatFloat(val)
	case []byte:
		return string(val)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
