// Package engine runs the retail analytics pipeline stage by stage.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Veraticus/retail-insights/internal/chart"
	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/export"
	"github.com/Veraticus/retail-insights/internal/forecast"
	"github.com/Veraticus/retail-insights/internal/loader"
	"github.com/Veraticus/retail-insights/internal/model"
	"github.com/Veraticus/retail-insights/internal/service"
	"github.com/Veraticus/retail-insights/internal/telemetry"
)

// Stage names, in execution order.
const (
	StageLoad     = "load"
	StageQuery    = "query"
	StageChart    = "chart"
	StageForecast = "forecast"
	StageSummary  = "summary"
	StageExport   = "export"
	StageNotify   = "notify"
)

// Stages lists every stage in execution order.
var Stages = []string{StageLoad, StageQuery, StageChart, StageForecast, StageSummary, StageExport, StageNotify}

// Config holds the run options.
type Config struct {
	DataDir   string
	ExportDir string
	XLSXPath  string
	ChartsDir string
	// Horizon is the number of future weekly periods to forecast.
	Horizon int
	// PreviewRows limits the store preview printed to the console.
	PreviewRows int
	Charts      bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		ExportDir:   "exports",
		ChartsDir:   "charts",
		Horizon:     12,
		PreviewRows: 5,
		Charts:      true,
	}
}

// Result collects everything a run produced.
type Result struct {
	Forecast      model.Forecast
	RunID         string
	Summary       string
	SpreadsheetID string
	Stores        model.StoreAverages
	Types         model.TypeAverages
	Monthly       model.MonthlyTotals
	Weekly        model.WeeklySeries
	Files         []string
	Charts        []string
	Notified      bool
}

// Engine orchestrates one pipeline run.
type Engine struct {
	storage    service.Storage
	summarizer service.Summarizer
	publisher  service.Publisher
	notifier   service.Notifier
	forecaster Forecaster
	renderer   Renderer
	tracer     trace.Tracer
	progress   *cli.StageProgress
	out        io.Writer
	logger     *slog.Logger
	config     Config
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSummarizer enables the summary stage.
func WithSummarizer(s service.Summarizer) Option { return func(e *Engine) { e.summarizer = s } }

// WithPublisher enables publishing result tables after the CSV export.
func WithPublisher(p service.Publisher) Option { return func(e *Engine) { e.publisher = p } }

// WithNotifier enables the webhook stage.
func WithNotifier(n service.Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithForecaster replaces the default forecaster.
func WithForecaster(f Forecaster) Option { return func(e *Engine) { e.forecaster = f } }

// WithRenderer replaces the default chart renderer.
func WithRenderer(r Renderer) Option { return func(e *Engine) { e.renderer = r } }

// WithTracer records a span per stage.
func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithProgress reports stage completion.
func WithProgress(p *cli.StageProgress) Option { return func(e *Engine) { e.progress = p } }

// WithOutput sets where console previews are printed.
func WithOutput(w io.Writer) Option { return func(e *Engine) { e.out = w } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// New creates an engine over storage. Stages without a collaborator are skipped.
func New(config Config, storage service.Storage, opts ...Option) *Engine {
	e := &Engine{
		config:     config,
		storage:    storage,
		forecaster: TrendForecaster{Options: forecast.DefaultOptions()},
		renderer:   PNGRenderer{},
		tracer:     noop.NewTracerProvider().Tracer("engine"),
		progress:   cli.NewStageProgress(nil, len(Stages), false),
		out:        io.Discard,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.Horizon <= 0 {
		e.config.Horizon = DefaultConfig().Horizon
	}
	return e
}

// Run executes every stage in order and stops at the first failure.
// Files written before a failure stay on disk.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := e.logger.With("run_id", res.RunID)
	defer e.progress.Close()

	ctx, span := e.tracer.Start(ctx, "pipeline", trace.WithAttributes(attribute.String("run_id", res.RunID)))
	defer span.End()

	logger.Info("Starting pipeline", "data_dir", e.config.DataDir, "export_dir", e.config.ExportDir)
	started := time.Now()

	steps := []struct {
		run      func(context.Context, *Result) error
		sentinel error
		name     string
	}{
		{name: StageLoad, sentinel: common.ErrLoad, run: e.runLoad},
		{name: StageQuery, sentinel: common.ErrQuery, run: e.runQuery},
		{name: StageChart, sentinel: common.ErrChart, run: e.runChart},
		{name: StageForecast, sentinel: common.ErrForecast, run: e.runForecast},
		{name: StageSummary, sentinel: common.ErrSummary, run: e.runSummary},
		{name: StageExport, sentinel: common.ErrExport, run: e.runExport},
		{name: StageNotify, run: e.runNotify},
	}

	for _, step := range steps {
		if err := e.stage(ctx, logger, step.name, step.sentinel, func(ctx context.Context) error {
			return step.run(ctx, res)
		}); err != nil {
			span.RecordError(err)
			return res, err
		}
	}

	common.LogStage(logger, "pipeline", started, "files", len(res.Files))
	return res, nil
}

func (e *Engine) stage(ctx context.Context, logger *slog.Logger, name string, sentinel error, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.progress.Start(name)
	started := time.Now()
	ctx, span := e.tracer.Start(ctx, name)

	err := fn(ctx)
	if sentinel != nil {
		err = common.StageError(sentinel, err)
	}
	telemetry.EndSpan(span, err)

	if err != nil {
		logger.Error("Stage failed", "stage", name, "error", err)
		return err
	}
	common.LogStage(logger, name, started)
	e.progress.Done()
	return nil
}

func (e *Engine) runLoad(ctx context.Context, _ *Result) error {
	dataset, err := loader.LoadDataset(e.config.DataDir)
	if err != nil {
		return err
	}
	for _, t := range dataset.Tables() {
		e.logger.Debug("Loaded table", "table", t.Name, "rows", len(t.Rows), "columns", len(t.Columns))
	}
	return e.storage.RegisterDataset(ctx, dataset)
}

func (e *Engine) runQuery(ctx context.Context, res *Result) error {
	var err error
	if res.Stores, err = e.storage.AverageSalesByStore(ctx); err != nil {
		return err
	}
	if res.Types, err = e.storage.AverageSalesByType(ctx); err != nil {
		return err
	}
	if res.Monthly, err = e.storage.MonthlySales(ctx); err != nil {
		return err
	}
	if res.Weekly, err = e.storage.WeeklySales(ctx); err != nil {
		return err
	}

	e.printTable(fmt.Sprintf("Top %d stores by average weekly sales", e.config.PreviewRows),
		res.Stores.Head(e.config.PreviewRows), cli.TableOptions{Currency: []string{"AvgWeeklySales"}})
	e.printTable("Average sales by store type", res.Types, cli.TableOptions{Currency: []string{"AvgSales"}})
	return nil
}

func (e *Engine) runChart(_ context.Context, res *Result) error {
	if !e.config.Charts {
		e.logger.Debug("Chart rendering disabled")
		return nil
	}
	path := filepath.Join(e.config.ChartsDir, chart.MonthlyFile)
	if err := e.renderer.RenderMonthly(path, res.Monthly); err != nil {
		return err
	}
	res.Charts = append(res.Charts, path)
	return nil
}

func (e *Engine) runForecast(_ context.Context, res *Result) error {
	f, err := e.forecaster.Forecast(res.Weekly, e.config.Horizon)
	if err != nil {
		return err
	}
	res.Forecast = f

	if e.config.Charts {
		path := filepath.Join(e.config.ChartsDir, chart.ForecastFile)
		if err := e.renderer.RenderForecast(path, res.Weekly, f); err != nil {
			return common.StageError(common.ErrChart, err)
		}
		res.Charts = append(res.Charts, path)
	}

	e.printTable("Weekly sales forecast", f.Future(),
		cli.TableOptions{Currency: []string{"yhat", "yhat_lower", "yhat_upper"}})
	return nil
}

func (e *Engine) runSummary(ctx context.Context, res *Result) error {
	if e.summarizer == nil {
		e.logger.Info("Summary disabled, skipping")
		return nil
	}
	text, err := e.summarizer.Summarize(ctx, res.Forecast)
	if err != nil {
		return err
	}
	res.Summary = text
	e.printf("\n%s\n%s\n", cli.FormatTitle("Executive Summary:"), text)
	return nil
}

func (e *Engine) runExport(ctx context.Context, res *Result) error {
	tables := []model.Table{res.Stores, res.Types, res.Monthly, res.Forecast.Future()}

	files, err := export.WriteAll(e.config.ExportDir, tables...)
	res.Files = append(res.Files, files...)
	if err != nil {
		return err
	}

	if e.config.XLSXPath != "" {
		if err := export.WriteWorkbook(e.config.XLSXPath, tables...); err != nil {
			return err
		}
		res.Files = append(res.Files, e.config.XLSXPath)
	}

	if e.publisher != nil {
		id, err := e.publisher.Publish(ctx, tables...)
		if err != nil {
			e.logger.Warn("Failed to publish results to Google Sheets", "error", err)
		} else {
			res.SpreadsheetID = id
		}
	}

	e.printf("\n%s\n", cli.RenderBox(cli.FolderIcon+" Exported", strings.Join(res.Files, "\n")))
	return nil
}

func (e *Engine) runNotify(ctx context.Context, res *Result) error {
	if e.notifier == nil {
		e.logger.Debug("Webhook disabled, skipping")
		return nil
	}
	res.Notified = e.notifier.Notify(ctx)
	return nil
}

func (e *Engine) printTable(title string, t model.Table, opts cli.TableOptions) {
	e.printf("\n%s\n%s\n", cli.FormatTitle(title), cli.RenderTable(t, opts))
}

func (e *Engine) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(e.out, format, args...); err != nil {
		e.logger.Warn("Failed to write console output", "error", err)
	}
}
