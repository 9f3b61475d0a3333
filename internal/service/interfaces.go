// Package service defines the contracts between pipeline stages.
package service

import (
	"context"

	"github.com/Veraticus/retail-insights/internal/loader"
	"github.com/Veraticus/retail-insights/internal/model"
)

// Storage is the query engine over the loaded tables.
type Storage interface {
	RegisterDataset(ctx context.Context, dataset *loader.Dataset) error

	// Fixed aggregate queries
	AverageSalesByStore(ctx context.Context) (model.StoreAverages, error)
	AverageSalesByType(ctx context.Context) (model.TypeAverages, error)
	MonthlySales(ctx context.Context) (model.MonthlyTotals, error)
	WeeklySales(ctx context.Context) (model.WeeklySeries, error)

	// Ad-hoc read-only SQL
	Query(ctx context.Context, query string) (*model.GenericTable, error)

	Close() error
}

// Summarizer produces a written outlook for a forecast.
type Summarizer interface {
	Summarize(ctx context.Context, forecast model.Forecast) (string, error)
}

// Publisher pushes result tables to a remote destination and returns its identifier.
type Publisher interface {
	Publish(ctx context.Context, tables ...model.Table) (string, error)
}

// Notifier signals an external system that a run has finished.
// It reports success but never fails the run.
type Notifier interface {
	Notify(ctx context.Context) bool
}
