package contract

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/doxycov/schema"
)

// Default values for configuration.
const (
	DefaultThreshold = 80
	MinThreshold     = 0
	MaxThreshold     = 100
	DefaultLogFile   = ".doxycov.log"
)

// Config holds the runtime configuration for a coverage run.
// This struct is the "final, validated" config.
type Config struct {
	InputDir     string
	NoError      bool
	Threshold    int
	ExcludeDirs  []string
	ExcludeGlobs []string
	Output       schema.OutputMode
	OutputFile   string
	MetricsFile  string
	Width        int // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputDirStr string

	NoError          bool     `mapstructure:"noerror"`
	Threshold        int      `mapstructure:"threshold"`
	ExcludeDirs      []string `mapstructure:"excludedirs"`
	ExcludeGlobs     []string `mapstructure:"exclude-glob"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	MetricsFile      string   `mapstructure:"metrics-file"`
	Width            int      `mapstructure:"width"`
	Color            string   `mapstructure:"color"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	LogFile          string   `mapstructure:"log-file"`
	Verbose          bool     `mapstructure:"verbose"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ExcludeDirs != nil {
		clone.ExcludeDirs = make([]string, len(c.ExcludeDirs))
		copy(clone.ExcludeDirs, c.ExcludeDirs)
	}
	if c.ExcludeGlobs != nil {
		clone.ExcludeGlobs = make([]string, len(c.ExcludeGlobs))
		copy(clone.ExcludeGlobs, c.ExcludeGlobs)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processExcludes(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend turns a raw backend name into a DatabaseBackend. Empty means disabled.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(raw) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputDir = strings.TrimSpace(input.InputDirStr)
	if cfg.InputDir == "" {
		return fmt.Errorf("the Doxygen XML directory is required")
	}
	cfg.NoError = input.NoError
	cfg.OutputFile = input.OutputFile
	cfg.MetricsFile = input.MetricsFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Threshold < MinThreshold || input.Threshold > MaxThreshold {
		return fmt.Errorf("threshold must be between %d and %d (received %d)", MinThreshold, MaxThreshold, input.Threshold)
	}
	cfg.Threshold = input.Threshold

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, table, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}
	return nil
}

// processExcludes keeps the substring and glob exclusions, dropping blanks.
// Substrings are matched verbatim, so surrounding whitespace is preserved.
func processExcludes(cfg *Config, input *ConfigRawInput) error {
	cfg.ExcludeDirs = nil
	for _, ex := range input.ExcludeDirs {
		if ex != "" {
			cfg.ExcludeDirs = append(cfg.ExcludeDirs, ex)
		}
	}

	cfg.ExcludeGlobs = nil
	for _, g := range input.ExcludeGlobs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid --exclude-glob pattern %q", g)
		}
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, g)
	}
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}
