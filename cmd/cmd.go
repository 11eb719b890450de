// Package cmd defines the command-line interface for doxycov.
package cmd

import (
	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Bool("noerror", false, "Exit with status 0 regardless of coverage or errors")
	rootCmd.PersistentFlags().Int("threshold", contract.DefaultThreshold, "Minimum acceptable total coverage percentage (0-100)")
	rootCmd.PersistentFlags().StringSlice("excludedirs", nil, "Comma-separated substrings; matching file paths are ignored")
	rootCmd.PersistentFlags().StringSlice("exclude-glob", nil, "Doublestar glob patterns; matching file paths are ignored")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or table or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus textfile gauges to this path")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for mysql/postgresql, or the sqlite file path")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-file", contract.DefaultLogFile, "Diagnostics log file (rotated)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log debug diagnostics")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
