package pipeline

import (
	"context"
	"log"

	"github.com/jonathan/stocks-graph/internal/table"
	"github.com/jonathan/stocks-graph/internal/types"
	"github.com/jonathan/stocks-graph/internal/wikipedia"
)

// AttachPages looks up the markup of every titled row and stores it in wikipedia_page.
// Rows whose title the selector cannot find keep an empty page. Returns the number of pages attached.
func AttachPages(ctx context.Context, t *types.Table, selector wikipedia.PageSelector) (int, error) {
	titles := make([]string, 0, len(t.Records))
	for _, rec := range t.Records {
		if rec.WikipediaTitle != "" {
			titles = append(titles, rec.WikipediaTitle)
		}
	}

	pages := map[string]string{}
	if len(titles) > 0 {
		var err error
		pages, err = selector.SelectPages(ctx, titles)
		if err != nil {
			return 0, err
		}
	}

	t.AddColumn(types.ColumnWikipediaPage)
	attached := 0
	for i := range t.Records {
		rec := &t.Records[i]
		if rec.WikipediaTitle == "" {
			continue
		}
		text, ok := pages[rec.WikipediaTitle]
		if !ok {
			continue
		}
		rec.WikipediaPage = text
		attached++
	}
	return attached, nil
}

// PageStage fetches article markup for the titled rows.
type PageStage struct {
	fileStage
	input    string
	selector wikipedia.PageSelector
	verbose  bool
}

// NewPageStage returns the page fetch stage.
func NewPageStage(input, output string, selector wikipedia.PageSelector, verbose bool) *PageStage {
	return &PageStage{
		fileStage: fileStage{name: StagePage, output: output},
		input:     input,
		selector:  selector,
		verbose:   verbose,
	}
}

// Run implements Stage.
func (s *PageStage) Run(ctx context.Context) error {
	t, err := table.Load(s.input)
	if err != nil {
		return &StageError{Stage: s.name, Message: "failed to load input", Cause: err}
	}

	attached, err := AttachPages(ctx, t, s.selector)
	if err != nil {
		return &StageError{Stage: s.name, Message: "page selection failed", Cause: err}
	}
	if s.verbose {
		log.Printf("[WIKI] attached %d pages to %d titled rows", attached, t.CountFilled(types.ColumnWikipediaTitle))
	}

	if err := table.Save(s.output, t); err != nil {
		return &StageError{Stage: s.name, Message: "failed to save page table", Cause: err}
	}
	return nil
}
