// Package main provides the entry point for the stocks knowledge-graph dataset builder.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stocks_agent",
	Short: "Stocks knowledge-graph dataset builder",
	Long: `Builds a dataset of US-listed companies annotated with their Wikipedia categories.

Listings from the NASDAQ screener and the S&P 500 constituents are merged, each company is matched to a
Wikipedia article through a browser search, and the article's category tags are extracted. Every stage
writes a snapshot file in the data directory and is skipped when that file already exists.`,
	SilenceUsage: true,
}

var (
	flagConfigPath  string
	flagDataDir     string
	flagDatabaseURL string
	flagVerbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding the stage snapshots (default \"data\")")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
