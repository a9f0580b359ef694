package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/stocks-graph/internal/config"
	"github.com/jonathan/stocks-graph/internal/pipeline"
)

// Flags shared by the commands that run stages.
var (
	flagHeadless    bool
	flagSkipRows    int
	flagSearchDelay int
	flagQuerySuffix string
	flagBatchSize   int
)

func addStageFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run the search browser without a window")
	cmd.Flags().IntVar(&flagSkipRows, "skip-rows", config.DefaultSkipRows, "Leading rows the title stage never searches for")
	cmd.Flags().IntVar(&flagSearchDelay, "search-delay", config.DefaultSearchDelaySeconds, "Seconds to wait after every search")
	cmd.Flags().StringVar(&flagQuerySuffix, "query-suffix", config.DefaultQuerySuffix, "Text appended to each company name in the search query")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", config.DefaultBatchSize, "Titles per Wikipedia API request (max 50)")
}

// loadSettings builds the effective configuration for a command:
// config file, then explicit flags, then environment, then defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if flagConfigPath != "" {
		loaded, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if flagVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", flagConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if flags.Changed("headless") {
		cfg.Headless = flagHeadless
	}
	if flags.Changed("query-suffix") {
		cfg.QuerySuffix = flagQuerySuffix
	}
	if flags.Changed("skip-rows") {
		cfg.SkipRows = config.IntPtr(flagSkipRows)
	}
	if flags.Changed("search-delay") {
		cfg.SearchDelaySeconds = config.IntPtr(flagSearchDelay)
	}

	// Step 3: Environment fallbacks
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 4: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if flags.Changed("batch-size") {
		cfg.BatchSize = flagBatchSize
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// pathsFor maps the configured file names onto stage paths.
func pathsFor(cfg config.Config) pipeline.Paths {
	return pipeline.Paths{
		Raw:        cfg.Path(cfg.RawFile),
		Title:      cfg.Path(cfg.TitleFile),
		Page:       cfg.Path(cfg.PageFile),
		Categories: cfg.Path(cfg.CategoriesFile),
	}
}
