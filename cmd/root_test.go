package cmd

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals restores the package state touched by a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		*cfg = contract.Config{}
		viper.Reset()
	})
}

func TestExitStatus(t *testing.T) {
	resetGlobals(t)

	tests := []struct {
		name    string
		err     error
		noError bool
		want    int
		stderr  string
	}{
		{"coverage deficit", &contract.ExitError{Code: 23}, false, 23, ""},
		{"deficit with noerror", &contract.ExitError{Code: 23}, true, 0, ""},
		{"fatal error", schema.ErrMissingIndex, false, 1, "ERROR: " + schema.ErrMissingIndex.Error() + "\n"},
		{"fatal error with noerror", errors.New("boom"), true, 0, "ERROR: boom\n"},
		{"wrapped exit error", &contract.ExitError{Code: 1, Err: errors.New("io")}, false, 1, "ERROR: io\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Set("noerror", tt.noError)
			var buf bytes.Buffer
			assert.Equal(t, tt.want, exitStatus(&buf, tt.err))
			assert.Equal(t, tt.stderr, buf.String())
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("verbose writes debug records", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "debug.log")
		configureLogger(logPath, true)
		slog.Debug("collected coverage records", "files", 2)

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "level=DEBUG")
		assert.Contains(t, string(data), "files=2")
	})

	t.Run("info level drops debug records", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "info.log")
		configureLogger(logPath, false)
		slog.Debug("hidden")
		slog.Info("shown")

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "msg=shown")
	})
}

func TestLoadHistoryConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("reads the config file", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "history.db")
		configPath := filepath.Join(dir, ".doxycov.yaml")
		content := "history-backend: SQLite\nhistory-db-connect: " + dbPath + "\noutput: JSON\ncolor: no\nlog-file: " + filepath.Join(dir, "doxycov.log") + "\n"
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
		viper.Set("config", configPath)

		require.NoError(t, loadHistoryConfig())
		assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
		assert.Equal(t, dbPath, cfg.HistoryDBConnect)
		assert.Equal(t, schema.JSONOut, cfg.Output)
		assert.False(t, cfg.UseColors)
	})

	t.Run("sqlite defaults to the home database", func(t *testing.T) {
		resetGlobals(t)
		viper.Set("config", writeEmptyConfig(t))
		viper.Set("history-backend", "sqlite")
		viper.Set("color", "yes")

		require.NoError(t, loadHistoryConfig())
		assert.Equal(t, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect)
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetGlobals(t)
		viper.Set("config", writeEmptyConfig(t))
		viper.Set("history-backend", "oracle")

		err := loadHistoryConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid history backend")
	})

	t.Run("mysql needs a connection string", func(t *testing.T) {
		resetGlobals(t)
		viper.Set("config", writeEmptyConfig(t))
		viper.Set("history-backend", "mysql")

		err := loadHistoryConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history-db-connect is required")
	})
}

// writeEmptyConfig creates a config file that only redirects the log.
func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".doxycov.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-file: "+filepath.Join(dir, "doxycov.log")+"\n"), 0o644))
	return path
}
