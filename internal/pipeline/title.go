package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/stocks-graph/internal/resolve"
	"github.com/jonathan/stocks-graph/internal/table"
	"github.com/jonathan/stocks-graph/internal/types"
)

// DefaultSkipRows is the number of leading rows the title stage never searches for.
const DefaultSkipRows = 6

// PartialMarker is inserted before the title output's extension for in-progress snapshots.
const PartialMarker = ".partial"

// CheckpointFunc persists the table after a row has been resolved.
type CheckpointFunc func(t *types.Table) error

// ResolveOptions configures ResolveTitles.
type ResolveOptions struct {
	SkipRows   int
	Checkpoint CheckpointFunc
	Verbose    bool
}

// ResolveTitles fills wikipedia_title for every row past SkipRows that has none yet.
// Rows without a match keep an empty title. The table is modified in place and
// checkpointed after each resolved row; a provider error stops the loop.
func ResolveTitles(ctx context.Context, t *types.Table, provider resolve.Provider, opts ResolveOptions) (int, error) {
	t.AddColumn(types.ColumnWikipediaTitle)

	resolved := 0
	for i := range t.Records {
		if i < opts.SkipRows {
			continue
		}
		rec := &t.Records[i]
		if rec.WikipediaTitle != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, err
		}

		title, found, err := provider.Resolve(ctx, rec.Security)
		if err != nil {
			return resolved, err
		}
		if !found {
			continue
		}

		rec.WikipediaTitle = title
		resolved++
		if opts.Verbose {
			log.Printf("[TITLE] %d/%d %s -> %s", i+1, len(t.Records), rec.Symbol, title)
		}
		if opts.Checkpoint != nil {
			if err := opts.Checkpoint(t); err != nil {
				return resolved, err
			}
		}
	}
	return resolved, nil
}

// TitleStage resolves Wikipedia titles for the raw table.
// Progress is kept in a ".partial" sibling of the output until the loop finishes, so an
// interrupted run resumes from the last resolved row.
type TitleStage struct {
	fileStage
	input    string
	provider resolve.Provider
	skipRows int
	verbose  bool
}

// NewTitleStage returns the title resolution stage.
func NewTitleStage(input, output string, provider resolve.Provider, skipRows int, verbose bool) *TitleStage {
	return &TitleStage{
		fileStage: fileStage{name: StageTitle, output: output},
		input:     input,
		provider:  provider,
		skipRows:  skipRows,
		verbose:   verbose,
	}
}

// PartialPath returns the in-progress snapshot path, keeping the output's
// extension so the same codec is used.
func (s *TitleStage) PartialPath() string {
	ext := filepath.Ext(s.output)
	return strings.TrimSuffix(s.output, ext) + PartialMarker + ext
}

// source picks the snapshot to continue from: in-progress work first, then a
// previous complete output (forced re-run), then the raw table.
func (s *TitleStage) source() string {
	if table.Exists(s.PartialPath()) {
		return s.PartialPath()
	}
	if table.Exists(s.output) {
		return s.output
	}
	return s.input
}

// Run implements Stage.
func (s *TitleStage) Run(ctx context.Context) error {
	if c, ok := s.provider.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	src := s.source()
	t, err := table.Load(src)
	if err != nil {
		return &StageError{Stage: s.name, Message: "failed to load input", Cause: err}
	}
	if s.verbose {
		log.Printf("[TITLE] loaded %d rows from %s (%d titled)", t.Len(), src, t.CountFilled(types.ColumnWikipediaTitle))
	}

	partial := s.PartialPath()
	resolved, err := ResolveTitles(ctx, t, s.provider, ResolveOptions{
		SkipRows: s.skipRows,
		Verbose:  s.verbose,
		Checkpoint: func(t *types.Table) error {
			return table.Save(partial, t)
		},
	})
	if err != nil {
		return &StageError{Stage: s.name, Message: "title resolution stopped", Cause: err}
	}

	if err := table.Save(s.output, t); err != nil {
		return &StageError{Stage: s.name, Message: "failed to save title table", Cause: err}
	}
	if err := os.Remove(partial); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StageError{Stage: s.name, Message: "failed to remove partial snapshot", Cause: err}
	}
	if s.verbose {
		log.Printf("[TITLE] resolved %d new titles, %d/%d rows titled", resolved, t.CountFilled(types.ColumnWikipediaTitle), t.Len())
	}
	return nil
}
