package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/doxycov/core"
	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/iocache"
	"github.com/huangsam/doxycov/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// historyManager is the global run history manager instance.
var historyManager contract.HistoryManager = iocache.Manager

// rootCmd checks the documentation coverage of a Doxygen XML directory.
var rootCmd = &cobra.Command{
	Use:   "doxycov [flags] <dir>",
	Short: "Measure API documentation coverage from Doxygen XML output.",
	Long: `doxycov reads the XML that Doxygen generates (GENERATE_XML = YES) and reports,
per source file, how many documentable symbols carry documentation.

Files are listed least documented first, each followed by its undocumented
identifiers, then the aggregate percentage. The exit status is the coverage
deficit below --threshold, so a CI job fails when coverage drops.

Examples:
  # Check the default 80% threshold
  doxycov docs/xml

  # Require 95%, ignoring vendored and generated headers
  doxycov --threshold 95 --excludedirs third_party,generated docs/xml

  # Report as a table without failing the build
  doxycov --output table --noerror docs/xml

  # Record the run and export Prometheus gauges
  doxycov --history-backend sqlite --metrics-file coverage.prom docs/xml`,
	Version:            version,
	Args:               cobra.ExactArgs(1),
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE:            sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, err := core.ExecuteCoverage(rootCtx, cfg, historyManager)
		if err != nil {
			return err
		}
		if result.ExitCode != 0 {
			return &contract.ExitError{Code: result.ExitCode}
		}
		return nil
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigLocation()

	// Set environment variable prefix
	viper.SetEnvPrefix("DOXYCOV")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("threshold", contract.DefaultThreshold)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-file", contract.DefaultLogFile)
}

// setConfigLocation points viper at --config or the default .doxycov.yaml locations.
func setConfigLocation() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".doxycov") // Name of config file (without extension)
	viper.SetConfigType("yaml")     // We'll use YAML format
	viper.AddConfigPath(".")        // Look in the current directory
	viper.AddConfigPath("$HOME")    // Look in the home directory
}

// loadConfigFile reads the config file if present. A missing file is not an error.
func loadConfigFile() error {
	setConfigLocation()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	configureLogger(input.LogFile, input.Verbose)

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.InputDirStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Initialize run history with validated config
	if err := iocache.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	defer iocache.CloseHistory()

	err := rootCmd.ExecuteContext(rootCtx)
	if err == nil {
		return 0
	}
	return exitStatus(os.Stderr, err)
}

// exitStatus reports err and maps it to an exit code. A coverage deficit is
// not an error message, only a status; --noerror forces success either way.
func exitStatus(w io.Writer, err error) int {
	noError := cfg.NoError || viper.GetBool("noerror")
	if exitErr, ok := contract.AsExitError(err); ok && exitErr.Err == nil {
		return contract.ExitCode(nil, exitErr.Code, noError)
	}
	contract.ReportError(w, err, cfg.UseColors)
	return contract.ExitCode(err, 0, noError)
}

// SetHistoryManager sets the global history manager.
func SetHistoryManager(mgr contract.HistoryManager) {
	historyManager = mgr
}
