package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/stocks-graph/internal/config"
)

// newFlagCmd returns a command carrying the same flags as build, parsed from args.
func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&flagConfigPath, "config", "", "")
	cmd.Flags().StringVarP(&flagDataDir, "data-dir", "d", "", "")
	cmd.Flags().StringVar(&flagDatabaseURL, "db-url", "", "")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "")
	addStageFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := loadSettings(newFlagCmd(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDataDir, cfg.DataDir)
	assert.Equal(t, config.DefaultSkipRows, cfg.SkipRowCount())
	assert.Equal(t, time.Duration(config.DefaultSearchDelaySeconds)*time.Second, cfg.SearchDelay())
	assert.Equal(t, config.DefaultQuerySuffix, cfg.QuerySuffix)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadSettings_FlagsOverrideConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"data_dir": "from-file", "skip_rows": 3, "dataset": "someone/sp500"}`), 0644))

	cfg, err := loadSettings(newFlagCmd(t, "--config", cfgPath, "--data-dir", dir, "--skip-rows", "0", "--search-delay", "0"))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 0, cfg.SkipRowCount())
	assert.Zero(t, cfg.SearchDelay())
	assert.Equal(t, "someone/sp500", cfg.Dataset)
}

func TestLoadSettings_ZeroInConfigFileIsKept(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"data_dir": "`+filepath.ToSlash(dir)+`", "skip_rows": 0, "search_delay_seconds": 0}`), 0644))

	cfg, err := loadSettings(newFlagCmd(t, "--config", cfgPath))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.SkipRowCount())
	assert.Zero(t, cfg.SearchDelay())
}

func TestLoadSettings_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := loadSettings(newFlagCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)

	cfg, err = loadSettings(newFlagCmd(t, "--db-url", "postgres://flag"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag", cfg.DatabaseURL)
}

func TestLoadSettings_InvalidFlag(t *testing.T) {
	_, err := loadSettings(newFlagCmd(t, "--batch-size", "200"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BatchSize")
}

func TestLoadSettings_MissingConfigFile(t *testing.T) {
	_, err := loadSettings(newFlagCmd(t, "--config", filepath.Join(t.TempDir(), "nope.json")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
