package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/config"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast weekly sales without running the full pipeline",
		Long: `Load the sales data, aggregate it to weekly totals and print the forecast
for the next --horizon weeks. Nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: runForecast,
	}

	cmd.Flags().Bool("all", false, "also print the in-sample fitted rows")

	return cmd
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := openDataset(ctx, cfg.Data.Dir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	weekly, err := store.WeeklySales(ctx)
	if err != nil {
		return common.StageError(common.ErrQuery, err)
	}

	result, err := newForecaster(cfg).Forecast(weekly, cfg.Forecast.Horizon)
	if err != nil {
		return common.StageError(common.ErrForecast, err)
	}

	if all, _ := cmd.Flags().GetBool("all"); !all {
		result = result.Future()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Forecast: next %d weeks", cfg.Forecast.Horizon)))
	fmt.Fprintln(out, cli.RenderTable(result, cli.TableOptions{Currency: []string{"yhat", "yhat_lower", "yhat_upper"}}))
	return nil
}
