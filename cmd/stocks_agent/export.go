package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/stocks-graph/internal/config"
	"github.com/jonathan/stocks-graph/internal/db"
	"github.com/jonathan/stocks-graph/internal/table"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Upsert the final dataset into PostgreSQL",
	Long:  "Loads the final dataset file and writes every record into the stock_nodes table, recording the export in pipeline_runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return exportDataset(cmd.Context(), cfg, uuid.Nil)
	},
}

func init() {
	rootCmd.AddCommand(exportCommand)
}

// exportDataset writes the final file to the configured database under runID.
func exportDataset(ctx context.Context, cfg config.Config, runID uuid.UUID) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("a database URL is required: use --db-url or set DATABASE_URL")
	}

	final := cfg.Path(cfg.CategoriesFile)
	if !table.Exists(final) {
		return fmt.Errorf("final dataset %s not found; run 'stocks_agent build' first", final)
	}
	t, err := table.Load(final)
	if err != nil {
		return err
	}

	fmt.Printf("Exporting %d records from %s...\n", t.Len(), final)
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	written, err := database.ExportTable(ctx, runID, cfg.DataDir, t)
	if err != nil {
		return fmt.Errorf("export failed after %d records: %w", written, err)
	}
	fmt.Printf("Exported %d stock nodes\n", written)
	return nil
}
