// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonathan/stocks-graph/internal/pipeline"
	"github.com/jonathan/stocks-graph/internal/types"
	"github.com/jonathan/stocks-graph/internal/wikitext"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fitLine(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fitLine(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fitLine cuts line to width display columns, marking the cut with "...", and pads the rest
func fitLine(line string, width int) string {
	if text.RuneWidthWithoutEscSequences(line) > width {
		line = text.Trim(line, width-3) + "..."
	}
	return text.Pad(line, width, ' ')
}

// newTable returns a rounded table writer mirrored to the printer's output
func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(p.out)
	return t
}

// PrintTablePreview outputs the row count, column fill counts and the first rows of a snapshot.
func (p *Printer) PrintTablePreview(title string, t *types.Table) {
	if t == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rows: %d\n", t.Len()))
	for _, col := range t.Columns {
		switch col {
		case types.ColumnWikipediaTitle, types.ColumnWikipediaPage, types.ColumnCategories:
			sb.WriteString(fmt.Sprintf("  %-18s %d/%d filled\n", col, t.CountFilled(col), t.Len()))
		}
	}

	if t.Len() > 0 {
		sb.WriteString("\n")
		count := min(t.Len(), maxItemsToShow)
		for i := 0; i < count; i++ {
			rec := t.Records[i]
			sb.WriteString(fmt.Sprintf("%-6s %s\n", rec.Symbol, rec.Security))
			if rec.WikipediaTitle != "" {
				sb.WriteString(fmt.Sprintf("       → %s\n", rec.WikipediaTitle))
			}
		}
		if t.Len() > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", t.Len()-maxItemsToShow))
		}
	}

	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

// StageStatus describes one stage's checkpoint on disk.
type StageStatus struct {
	Stage    string
	Output   string
	Complete bool
	Rows     int
	Partial  string // in-progress snapshot path, if one exists
}

// PrintStageStatus renders one row per stage.
func (p *Printer) PrintStageStatus(statuses []StageStatus) {
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Stage", "Output", "State", "Rows"})
	for i, s := range statuses {
		state := "pending"
		rows := "-"
		switch {
		case s.Complete:
			state = "complete"
			rows = fmt.Sprintf("%d", s.Rows)
		case s.Partial != "":
			state = "in progress"
			rows = fmt.Sprintf("%d", s.Rows)
		}
		t.AppendRow(table.Row{i + 1, s.Stage, s.Output, state, rows})
	}
	t.Render()
}

// PrintRunResults renders the outcome of every stage visited by a run.
func (p *Printer) PrintRunResults(runID string, results []pipeline.StageResult) {
	if len(results) == 0 {
		return
	}
	t := p.newTable()
	t.SetTitle("Run " + runID)
	t.AppendHeader(table.Row{"Stage", "Status", "Duration", "Output"})
	for _, r := range results {
		duration := "-"
		if r.Status != pipeline.StatusSkipped {
			duration = r.Duration.Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{r.Stage, r.Status, duration, r.Output})
	}
	t.Render()
}

// PrintCategories outputs the most common categories in the final dataset.
func (p *Printer) PrintCategories(counts map[string]int, limit int) {
	if len(counts) == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Distinct categories: %d\n\n", len(counts)))
	count := min(len(names), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("%4d  %s\n", counts[names[i]], names[i]))
	}
	if len(names) > limit {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(names)-limit))
	}

	p.printBox("TOP CATEGORIES", strings.TrimSuffix(sb.String(), "\n"))
}

// CategoryCounts tallies how many records carry each category.
// Records with undecodable categories are skipped.
func CategoryCounts(t *types.Table) map[string]int {
	counts := map[string]int{}
	for _, rec := range t.Records {
		if rec.Categories == "" {
			continue
		}
		cats, err := wikitext.DecodeCategories(rec.Categories)
		if err != nil {
			continue
		}
		for _, c := range cats {
			counts[c]++
		}
	}
	return counts
}
