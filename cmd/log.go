package cmd

import (
	"log/slog"
	"strings"

	"github.com/huangsam/doxycov/internal/contract"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the diagnostics log.
const (
	logMaxSizeMB  = 5
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// configureLogger sends slog output to a rotating file so stdout and stderr
// stay reserved for the report and fatal messages.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = contract.DefaultLogFile
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
