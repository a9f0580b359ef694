package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/stocks-graph/internal/pipeline"
)

var stageCommand = &cobra.Command{
	Use:       "stage <name>",
	Short:     "Run the pipeline up to a single stage",
	Long:      "Runs the named stage (raw, title, page or categories), first running any earlier stage whose output is missing.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: pipeline.StageNames,
	RunE:      runStageCmd,
}

var stageForce bool

func init() {
	stageCommand.Flags().BoolVarP(&stageForce, "force", "f", false, "Re-run the stage even if its output exists")
	addStageFlags(stageCommand)

	rootCmd.AddCommand(stageCommand)
}

func runStageCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	stages, err := selectStages(newStages(cfg, os.Stdin, os.Stdout), args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := pipeline.NewRunner(stages...)
	if stageForce {
		runner.Force = map[string]bool{args[0]: true}
	}
	return runStages(ctx, cfg, runner)
}
