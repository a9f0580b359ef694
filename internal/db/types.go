package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunCounts summarizes what an export wrote
type RunCounts struct {
	Total       int `json:"total"`
	Titled      int `json:"titled"`
	Categorized int `json:"categorized"`
}

// Run represents a pipeline run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	DataDir     string     `json:"data_dir"`
	Status      string     `json:"status"`
	Counts      RunCounts  `json:"counts"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StockNode is one exported security.
// Categories is nil when the record had no page text, and empty when the page had no tags.
type StockNode struct {
	Symbol          string     `json:"symbol"`
	Security        string     `json:"security"`
	Country         string     `json:"country"`
	GICSSector      string     `json:"gics_sector"`
	GICSSubIndustry string     `json:"gics_sub_industry"`
	WikipediaTitle  string     `json:"wikipedia_title"`
	Categories      []string   `json:"categories"`
	RunID           *uuid.UUID `json:"run_id,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
