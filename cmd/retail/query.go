package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/config"
	"github.com/Veraticus/retail-insights/internal/loader"
	"github.com/Veraticus/retail-insights/internal/storage"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run ad-hoc SQL against the loaded tables",
		Long: `Load train.csv, features.csv and stores.csv into the sales, features and
stores tables and run one SQL statement against them.

Example:
  retail query "SELECT Type, COUNT(*) AS n FROM stores GROUP BY Type"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().Bool("csv", false, "print the result as CSV instead of a table")
	cmd.Flags().Int("limit", 0, "maximum rows to display in table mode (0 for all)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	result, err := store.Query(ctx, args[0])
	if err != nil {
		return common.StageError(common.ErrQuery, err)
	}

	out := cmd.OutOrStdout()
	if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
		w := csv.NewWriter(out)
		if err := w.Write(result.Header()); err != nil {
			return err
		}
		if err := w.WriteAll(result.Records()); err != nil {
			return err
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	fmt.Fprintln(out, cli.RenderTable(result, cli.TableOptions{MaxRows: limit}))
	return nil
}

// openDataset loads the three input files into a fresh in-memory engine.
func openDataset(ctx context.Context, dir string) (*storage.SQLiteStorage, error) {
	dataset, err := loader.LoadDataset(dir)
	if err != nil {
		return nil, common.StageError(common.ErrLoad, err)
	}

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open query engine: %w", err)
	}

	if err := store.RegisterDataset(ctx, dataset); err != nil {
		_ = store.Close()
		return nil, common.StageError(common.ErrLoad, err)
	}

	slog.Debug("Dataset loaded", "dir", dir, "tables", store.TableNames())
	return store, nil
}
