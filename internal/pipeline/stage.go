// Package pipeline provides the checkpointed stages that build the stocks dataset
// and the linear runner that executes them.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jonathan/stocks-graph/internal/table"
)

// Stage names, in execution order.
const (
	StageRaw        = "raw"
	StageTitle      = "title"
	StagePage       = "page"
	StageCategories = "categories"
)

// StageNames lists every stage in execution order.
var StageNames = []string{StageRaw, StageTitle, StagePage, StageCategories}

// Stage is one checkpointed unit of the pipeline: it reads one snapshot file
// and writes one. A stage whose output exists is complete.
type Stage interface {
	Name() string
	Output() string
	IsComplete() bool
	Run(ctx context.Context) error
}

// StageError represents a failure inside a stage
type StageError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Paths holds the snapshot file of every stage.
type Paths struct {
	Raw        string
	Title      string
	Page       string
	Categories string
}

// Default snapshot file names inside the data directory.
const (
	DefaultRawFile        = "stocks.raw.csv"
	DefaultTitleFile      = "stocks.title.csv"
	DefaultPageFile       = "stocks.page.gob"
	DefaultCategoriesFile = "stocks.csv"
)

// DefaultPaths returns the default snapshot files under dataDir.
func DefaultPaths(dataDir string) Paths {
	return Paths{
		Raw:        filepath.Join(dataDir, DefaultRawFile),
		Title:      filepath.Join(dataDir, DefaultTitleFile),
		Page:       filepath.Join(dataDir, DefaultPageFile),
		Categories: filepath.Join(dataDir, DefaultCategoriesFile),
	}
}

// ForStage returns the output path of the named stage.
func (p Paths) ForStage(name string) (string, error) {
	switch name {
	case StageRaw:
		return p.Raw, nil
	case StageTitle:
		return p.Title, nil
	case StagePage:
		return p.Page, nil
	case StageCategories:
		return p.Categories, nil
	}
	return "", fmt.Errorf("unknown stage: %s", name)
}

// fileStage carries the checkpoint behavior shared by all stages.
type fileStage struct {
	name   string
	output string
}

func (s fileStage) Name() string     { return s.name }
func (s fileStage) Output() string   { return s.output }
func (s fileStage) IsComplete() bool { return table.Exists(s.output) }
