package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/stocks-graph/internal/config"
	"github.com/jonathan/stocks-graph/internal/observability"
	"github.com/jonathan/stocks-graph/internal/pipeline"
	"github.com/jonathan/stocks-graph/internal/table"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Run every stage of the dataset pipeline",
	Long: `Runs raw -> title -> page -> categories. Stages whose snapshot file already exists are skipped,
so an interrupted build picks up where it stopped.

The title stage opens a Chrome window on the search page and waits for you to accept cookies before
searching. When a database URL is configured the final dataset is exported afterwards.`,
	RunE: runBuildCmd,
}

var (
	buildForce    []string
	buildNoExport bool
)

func init() {
	buildCommand.Flags().StringSliceVar(&buildForce, "force", nil, "Re-run the named stages even if their output exists (or \"all\")")
	buildCommand.Flags().BoolVar(&buildNoExport, "no-export", false, "Skip the database export even if a database URL is configured")
	addStageFlags(buildCommand)

	rootCmd.AddCommand(buildCommand)
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	force, err := forceSet(buildForce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := pipeline.NewRunner(newStages(cfg, os.Stdin, os.Stdout)...)
	runner.Force = force
	if err := runStages(ctx, cfg, runner); err != nil {
		return err
	}

	if cfg.DatabaseURL != "" && !buildNoExport {
		return exportDataset(ctx, cfg, runner.RunID())
	}
	return nil
}

// runStages executes the runner and prints the verbose summary.
func runStages(ctx context.Context, cfg config.Config, runner *pipeline.Runner) error {
	if cfg.Verbose {
		runner.OnProgress = func(e pipeline.ProgressEvent) {
			log.Printf("[PIPELINE] %s %s: %s", e.Stage, e.Status, e.Message)
		}
	}

	results, err := runner.Run(ctx)
	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintRunResults(runner.RunID().String(), results)
	}
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if len(results) == 0 {
		return nil
	}
	last := results[len(results)-1]
	if cfg.Verbose {
		if t, loadErr := table.Load(last.Output); loadErr == nil {
			printer.PrintTablePreview(last.Stage+" snapshot", t)
			if last.Stage == pipeline.StageCategories {
				printer.PrintCategories(observability.CategoryCounts(t), 10)
			}
		}
	}
	fmt.Printf("Done: %s\n", last.Output)
	return nil
}
