package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/config"
	"github.com/Veraticus/retail-insights/internal/engine"
	"github.com/Veraticus/retail-insights/internal/forecast"
	"github.com/Veraticus/retail-insights/internal/notify"
	"github.com/Veraticus/retail-insights/internal/sheets"
	"github.com/Veraticus/retail-insights/internal/storage"
	"github.com/Veraticus/retail-insights/internal/summary"
	"github.com/Veraticus/retail-insights/internal/telemetry"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline",
		Long: `Run every stage in order: load the CSV files, run the aggregate queries,
render charts, forecast weekly sales, summarize the forecast, export the
results and trigger the webhook. The first failing stage stops the run.`,
		RunE: runPipeline,
	}
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		return fmt.Errorf("failed to open query engine: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close query engine", "error", closeErr)
		}
	}()

	tracing, err := telemetry.Setup(telemetry.Config{Enabled: cfg.Tracing, ServiceVersion: version}, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := tracing.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			slog.Warn("Failed to flush traces", "error", shutdownErr)
		}
	}()

	opts := []engine.Option{
		engine.WithForecaster(newForecaster(cfg)),
		engine.WithTracer(tracing.Tracer),
		engine.WithProgress(cli.NewStageProgress(os.Stderr, len(engine.Stages), cfg.Progress)),
		engine.WithOutput(cmd.OutOrStdout()),
		engine.WithLogger(slog.Default()),
	}

	if cfg.Summary {
		client, err := createLLMClient(cfg)
		if err != nil {
			return err
		}
		summarizer, err := summary.New(client, cfg.RetryOptions(), slog.Default())
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithSummarizer(summarizer))
	}

	if cfg.Webhook.Enabled {
		opts = append(opts, engine.WithNotifier(notify.New(cfg.Webhook.URL, cfg.Webhook.Timeout, slog.Default())))
	}

	if cfg.Sheets.Enabled {
		writer, err := sheets.NewWriter(ctx, cfg.SheetsWriterConfig(), slog.Default())
		if err != nil {
			return fmt.Errorf("failed to set up Google Sheets: %w", err)
		}
		opts = append(opts, engine.WithPublisher(writer))
	}

	engineCfg := engine.DefaultConfig()
	engineCfg.DataDir = cfg.Data.Dir
	engineCfg.ExportDir = cfg.Export.Dir
	engineCfg.XLSXPath = cfg.Export.XLSXPath
	engineCfg.ChartsDir = cfg.Charts.Dir
	engineCfg.Charts = cfg.Charts.Enabled
	engineCfg.Horizon = cfg.Forecast.Horizon

	res, err := engine.New(engineCfg, store, opts...).Run(ctx)
	if err != nil {
		return err
	}

	slog.Debug("Run complete",
		"run_id", res.RunID,
		"charts", len(res.Charts),
		"webhook_ok", res.Notified)
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pipeline finished, %d files written", len(res.Files))))
	return nil
}

func newForecaster(cfg *config.Config) engine.TrendForecaster {
	opts := forecast.DefaultOptions()
	opts.IntervalWidth = cfg.Forecast.IntervalWidth
	return engine.TrendForecaster{Options: opts}
}
