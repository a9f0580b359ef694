package pipeline

import (
	"context"
	"log"

	"github.com/jonathan/stocks-graph/internal/sources"
	"github.com/jonathan/stocks-graph/internal/table"
)

// RawStage downloads every listing source and writes the merged raw table.
type RawStage struct {
	fileStage
	fetchers []sources.Fetcher
	verbose  bool
}

// NewRawStage returns the merge stage. Fetcher order decides which source wins on duplicates.
func NewRawStage(output string, verbose bool, fetchers ...sources.Fetcher) *RawStage {
	return &RawStage{
		fileStage: fileStage{name: StageRaw, output: output},
		fetchers:  fetchers,
		verbose:   verbose,
	}
}

// Run implements Stage. Nothing is written when any source fails.
func (s *RawStage) Run(ctx context.Context) error {
	t, err := sources.BuildRaw(ctx, s.fetchers...)
	if err != nil {
		return &StageError{Stage: s.name, Message: "failed to fetch listings", Cause: err}
	}
	if s.verbose {
		log.Printf("[RAW] merged %d unique symbols from %d sources", t.Len(), len(s.fetchers))
	}
	if err := table.Save(s.output, t); err != nil {
		return &StageError{Stage: s.name, Message: "failed to save raw table", Cause: err}
	}
	return nil
}
