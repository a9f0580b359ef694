package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/stocks-graph/internal/table"
	"github.com/jonathan/stocks-graph/internal/types"
	"github.com/jonathan/stocks-graph/internal/wikitext"
)

// ExtractCategories fills the categories column from each row's page markup
// and projects the table to the final column set.
func ExtractCategories(t *types.Table) error {
	t.AddColumn(types.ColumnCategories)
	for i := range t.Records {
		rec := &t.Records[i]
		if rec.WikipediaPage == "" {
			rec.Categories = ""
			continue
		}
		encoded, err := wikitext.EncodeCategories(rec.WikipediaPage)
		if err != nil {
			return fmt.Errorf("failed to encode categories for %s: %w", rec.Symbol, err)
		}
		rec.Categories = encoded
	}
	t.Project(types.ExpectedColumns)
	return nil
}

// CategoriesStage writes the final dataset.
type CategoriesStage struct {
	fileStage
	input   string
	verbose bool
}

// NewCategoriesStage returns the category extraction stage.
func NewCategoriesStage(input, output string, verbose bool) *CategoriesStage {
	return &CategoriesStage{
		fileStage: fileStage{name: StageCategories, output: output},
		input:     input,
		verbose:   verbose,
	}
}

// Run implements Stage.
func (s *CategoriesStage) Run(_ context.Context) error {
	t, err := table.Load(s.input)
	if err != nil {
		return &StageError{Stage: s.name, Message: "failed to load input", Cause: err}
	}
	if err := ExtractCategories(t); err != nil {
		return &StageError{Stage: s.name, Message: "category extraction failed", Cause: err}
	}
	if s.verbose {
		log.Printf("[CATEGORIES] %d/%d rows have categories", t.CountFilled(types.ColumnCategories), t.Len())
	}
	if err := table.Save(s.output, t); err != nil {
		return &StageError{Stage: s.name, Message: "failed to save final table", Cause: err}
	}
	return nil
}
