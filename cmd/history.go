package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/iocache"
	"github.com/huangsam/doxycov/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadHistoryConfig reads just the history and output settings. History
// commands never need an XML directory, so the full validation is skipped.
func loadHistoryConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	configureLogger(viper.GetString("log-file"), viper.GetBool("verbose"))

	backend, err := contract.ParseBackend(viper.GetString("history-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetHistoryDBFilePath()
	}

	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	cfg.Width = viper.GetInt("width")
	cfg.UseColors = colors
	return nil
}

// historySetup loads history settings and opens the store.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadHistoryConfig(); err != nil {
		return err
	}
	if err := iocache.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historyMigrateSetup loads history settings without opening the store, so
// that no tables are created before migrations run.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	return loadHistoryConfig()
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup, so they work without a Doxygen XML directory.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the recorded history of coverage runs",
	Long: `Manage the coverage runs recorded with --history-backend.

Each recorded run stores:
- Run metadata (timestamp, input directory, configuration, duration)
- Aggregate totals, threshold and verdict
- Per-file documented and total symbol counts

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  list    - List recorded runs
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check history status
  doxycov history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  doxycov history export --history-backend sqlite --output-file coverage-history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection state, number of runs, the last and
oldest run timestamps, the last total coverage and table sizes.`,
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.PrintHistoryStatus(cmd.OutOrStdout(), iocache.Manager)
	},
}

// historyListCmd lists recorded runs.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded coverage runs, oldest first",
	Long: `List every recorded run with its start time, input directory, file count,
total coverage, threshold and verdict.

Output formats: table (default for text), csv, json, yaml

Examples:
  # Show the trend as JSON
  doxycov history list --history-backend sqlite --output json`,
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.PrintHistoryRuns(iocache.Manager, cfg)
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded coverage runs",
	Long: `Delete all recorded runs and per-file coverage rows.

For SQLite the database file is removed. For MySQL and PostgreSQL the
history tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  doxycov history export --history-backend sqlite --output-file backup
  doxycov history clear --history-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: historyMigrateSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := iocache.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "History cleared successfully.")
		return err
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet files",
	Long: `Export the history to two Parquet files for offline analysis:

  <output-file>.runs.parquet           - one row per run
  <output-file>.file_coverage.parquet  - one row per file per run

Examples:
  # Export and query with DuckDB
  doxycov history export --history-backend sqlite --output-file history
  duckdb -c "SELECT start_time, total_percent FROM 'history.runs.parquet'"`,
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.ExecuteHistoryExport(cmd.OutOrStdout(), iocache.Manager, cfg.OutputFile)
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the history store",
	Long: `Apply the embedded schema migrations to the configured history backend.

By default migrates to the latest version. Use --target-version to move to a
specific version, or 0 to roll back every migration.

Examples:
  # Migrate to latest
  doxycov history migrate --history-backend postgresql --history-db-connect "host=localhost dbname=doxycov"

  # Roll back to version 1
  doxycov history migrate --history-backend sqlite --target-version 1`,
	Args:    cobra.NoArgs,
	PreRunE: historyMigrateSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.MigrateHistory(cmd.OutOrStdout(), cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
	},
}
