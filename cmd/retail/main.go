package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "retail",
		Short: "📊 Retail sales analytics pipeline",
		Long: `retail: loads weekly sales, store and feature data, aggregates it with SQL,
charts the monthly trend, forecasts the next weeks of sales, asks a language
model for an executive summary, exports the results and pings a webhook.

Running without a subcommand runs the whole pipeline.`,
		PersistentPreRunE: initConfig,
		RunE:              runPipeline,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/retail/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("data-dir", "data", "directory holding train.csv, features.csv and stores.csv")
	flags.String("export-dir", "exports", "existing directory the result CSVs are written to")
	flags.String("xlsx", "", "also write every result table to this XLSX workbook")
	flags.Int("horizon", 12, "number of weeks to forecast")
	flags.Bool("skip-summary", false, "do not request a language model summary")
	flags.Bool("skip-notify", false, "do not trigger the webhook")
	flags.Bool("no-charts", false, "do not render charts")
	flags.Bool("no-progress", false, "hide the stage progress bar")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("data.dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("export.dir", flags.Lookup("export-dir"))
	_ = viper.BindPFlag("export.xlsx_path", flags.Lookup("xlsx"))
	_ = viper.BindPFlag("forecast.horizon", flags.Lookup("horizon"))

	// Add commands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background())

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(errorMessage(err)))
		os.Exit(1)
	}
}

// errorMessage prefers the terminal-facing text of a UserError.
func errorMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/retail", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// Environment variables
	viper.SetEnvPrefix("RETAIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	applyFlagOverrides(cmd)

	// Set up logging
	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

// applyFlagOverrides maps the negative switches onto their viper keys.
func applyFlagOverrides(cmd *cobra.Command) {
	overrides := map[string]string{
		"skip-summary": "summary.enabled",
		"skip-notify":  "webhook.enabled",
		"no-charts":    "charts.enabled",
		"no-progress":  "progress",
	}
	for flag, key := range overrides {
		if set, _ := cmd.Flags().GetBool(flag); set {
			viper.Set(key, false)
		}
	}
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	logger, err := common.NewLogger(os.Stderr, level, viper.GetString("logging.format"))
	if err != nil {
		return err
	}

	// Set default logger
	slog.SetDefault(logger)

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "retail version %s\n", version)
		},
	}
}
