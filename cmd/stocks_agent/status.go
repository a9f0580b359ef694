package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/stocks-graph/internal/observability"
	"github.com/jonathan/stocks-graph/internal/pipeline"
	"github.com/jonathan/stocks-graph/internal/table"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show which stages have a snapshot on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		printStatus(os.Stdout, newStages(cfg, os.Stdin, io.Discard))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCommand)
}

// stageStatuses inspects each stage's output and any in-progress snapshot.
func stageStatuses(stages []pipeline.Stage) []observability.StageStatus {
	statuses := make([]observability.StageStatus, 0, len(stages))
	for _, s := range stages {
		st := observability.StageStatus{Stage: s.Name(), Output: s.Output()}
		file := ""
		if s.IsComplete() {
			st.Complete = true
			file = s.Output()
		} else if ts, ok := s.(*pipeline.TitleStage); ok && table.Exists(ts.PartialPath()) {
			st.Partial = ts.PartialPath()
			file = st.Partial
		}
		if file != "" {
			if t, err := table.Load(file); err == nil {
				st.Rows = t.Len()
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func printStatus(out io.Writer, stages []pipeline.Stage) {
	observability.NewPrinter(out).PrintStageStatus(stageStatuses(stages))
}
