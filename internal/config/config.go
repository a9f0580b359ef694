// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/stocks-graph/internal/resolve"
	"github.com/jonathan/stocks-graph/internal/sources"
	"github.com/jonathan/stocks-graph/internal/wikipedia"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	DataDir        string `json:"data_dir,omitempty"`        // Directory holding the stage snapshots
	RawFile        string `json:"raw_file,omitempty"`        // Merged listings snapshot
	TitleFile      string `json:"title_file,omitempty"`      // Snapshot with resolved titles
	PageFile       string `json:"page_file,omitempty"`       // Snapshot with page markup
	CategoriesFile string `json:"categories_file,omitempty"` // Final dataset

	// Title resolution
	SkipRows           *int   `json:"skip_rows,omitempty" validate:"omitempty,gte=0"`            // Leading rows never searched; nil means unset
	SearchDelaySeconds *int   `json:"search_delay_seconds,omitempty" validate:"omitempty,gte=0"` // Pause after every search; nil means unset
	QuerySuffix        string `json:"query_suffix,omitempty"`                                    // Appended to the security name
	Headless           bool   `json:"headless,omitempty"`                                        // Run the browser without a window
	UserAgent          string `json:"user_agent,omitempty"`                                      // Browser and HTTP user agent

	// Sources
	NASDAQURL         string `json:"nasdaq_url,omitempty" validate:"omitempty,url"`
	DatasetsServerURL string `json:"datasets_server_url,omitempty" validate:"omitempty,url"`
	Dataset           string `json:"dataset,omitempty"`
	WikipediaAPIURL   string `json:"wikipedia_api_url,omitempty" validate:"omitempty,url"`
	BatchSize         int    `json:"batch_size,omitempty" validate:"gte=0,lte=50"` // Titles per MediaWiki request

	// Behavior
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for export
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
}

// Default values used when neither the config file nor a flag sets a field.
const (
	DefaultDataDir            = "data"
	DefaultRawFile            = "stocks.raw.csv"
	DefaultTitleFile          = "stocks.title.csv"
	DefaultPageFile           = "stocks.page.gob"
	DefaultCategoriesFile     = "stocks.csv"
	DefaultSkipRows           = 6
	DefaultSearchDelaySeconds = 60
	DefaultQuerySuffix        = resolve.DefaultQuerySuffix
	DefaultNASDAQURL          = sources.DefaultNASDAQURL
	DefaultDatasetsServerURL  = sources.DefaultDatasetsServerURL
	DefaultDataset            = sources.DefaultSP500Dataset
	DefaultWikipediaAPIURL    = wikipedia.DefaultAPIURL
	DefaultBatchSize          = wikipedia.MaxTitlesPerRequest
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:            DefaultDataDir,
		RawFile:            DefaultRawFile,
		TitleFile:          DefaultTitleFile,
		PageFile:           DefaultPageFile,
		CategoriesFile:     DefaultCategoriesFile,
		SkipRows:           IntPtr(DefaultSkipRows),
		SearchDelaySeconds: IntPtr(DefaultSearchDelaySeconds),
		QuerySuffix:        DefaultQuerySuffix,
		NASDAQURL:          DefaultNASDAQURL,
		DatasetsServerURL:  DefaultDatasetsServerURL,
		Dataset:            DefaultDataset,
		WikipediaAPIURL:    DefaultWikipediaAPIURL,
		BatchSize:          DefaultBatchSize,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	files := map[string]string{
		"raw_file":        c.RawFile,
		"title_file":      c.TitleFile,
		"page_file":       c.PageFile,
		"categories_file": c.CategoriesFile,
	}
	seen := map[string]string{}
	for field, name := range files {
		if name == "" {
			continue
		}
		if filepath.Base(name) != name {
			return fmt.Errorf("config error: '%s' must be a file name, not a path: %s", field, name)
		}
		if other, dup := seen[name]; dup {
			return fmt.Errorf("config error: '%s' and '%s' point to the same file: %s", field, other, name)
		}
		seen[name] = field
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: data_dir is not a directory: %s", c.DataDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.RawFile == "" {
		result.RawFile = defaults.RawFile
	}
	if result.TitleFile == "" {
		result.TitleFile = defaults.TitleFile
	}
	if result.PageFile == "" {
		result.PageFile = defaults.PageFile
	}
	if result.CategoriesFile == "" {
		result.CategoriesFile = defaults.CategoriesFile
	}
	if result.QuerySuffix == "" {
		result.QuerySuffix = defaults.QuerySuffix
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.NASDAQURL == "" {
		result.NASDAQURL = defaults.NASDAQURL
	}
	if result.DatasetsServerURL == "" {
		result.DatasetsServerURL = defaults.DatasetsServerURL
	}
	if result.Dataset == "" {
		result.Dataset = defaults.Dataset
	}
	if result.WikipediaAPIURL == "" {
		result.WikipediaAPIURL = defaults.WikipediaAPIURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Optional int fields: zero is a real value, only nil takes the default
	if result.SkipRows == nil && defaults.SkipRows != nil {
		result.SkipRows = IntPtr(*defaults.SkipRows)
	}
	if result.SearchDelaySeconds == nil && defaults.SearchDelaySeconds != nil {
		result.SearchDelaySeconds = IntPtr(*defaults.SearchDelaySeconds)
	}

	// Int fields: use default if zero
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SkipRowCount returns the number of leading rows the title stage leaves alone.
func (c *Config) SkipRowCount() int {
	if c.SkipRows == nil {
		return 0
	}
	return *c.SkipRows
}

// SearchDelay returns the pause between searches.
func (c *Config) SearchDelay() time.Duration {
	if c.SearchDelaySeconds == nil {
		return 0
	}
	return time.Duration(*c.SearchDelaySeconds) * time.Second
}

// IntPtr returns a pointer to v, for the optional int fields.
func IntPtr(v int) *int {
	return &v
}

// Path joins a snapshot file name onto the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}
