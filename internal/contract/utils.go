package contract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
)

// Coverage label constants.
const (
	ExcellentValue = "Excellent" // Excellent value
	GoodValue      = "Good"      // Good value
	FairValue      = "Fair"      // Fair value
	PoorValue      = "Poor"      // Poor value
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // nearly everything is documented.
	GoodColor      = color.New(color.FgCyan)              // most of the API is documented.
	FairColor      = color.New(color.FgYellow)            // noticeable gaps.
	PoorColor      = color.New(color.FgRed, color.Bold)   // mostly undocumented.
	ErrorColor     = color.New(color.FgRed, color.Bold)   // fatal message prefix.
)

// ErrorPrefix starts every fatal message written to stderr.
const ErrorPrefix = "ERROR:"

// GetPlainLabel returns a plain text label for a coverage percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(percent float64) string {
	switch {
	case percent >= 90:
		return ExcellentValue
	case percent >= 70:
		return GoodValue
	case percent >= 40:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(percent float64) string {
	text := GetPlainLabel(percent)

	switch text {
	case ExcellentValue:
		return ExcellentColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// IsExcluded reports whether path is dropped from the report. Substrings are
// matched case-sensitively anywhere in the path; globs use doublestar syntax
// and are tried against the full path and its base name.
func IsExcluded(path string, substrings []string, globs []string) bool {
	for _, ex := range substrings {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	slashed := filepath.ToSlash(path)
	for _, g := range globs {
		if ok, err := doublestar.Match(g, slashed); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(g, filepath.Base(slashed)); err == nil && ok {
			return true
		}
	}
	return false
}

// ExitCode maps a run outcome to the process exit status. noError forces 0,
// fatal errors map to 1, otherwise the coverage deficit is returned.
func ExitCode(err error, verdict int, noError bool) int {
	if noError {
		return 0
	}
	if err != nil {
		return 1
	}
	return verdict
}

// ReportError writes a fatal message with the ERROR prefix.
func ReportError(w io.Writer, err error, useColors bool) {
	prefix := ErrorPrefix
	if useColors {
		prefix = ErrorColor.Sprint(ErrorPrefix)
	}
	_, _ = fmt.Fprintf(w, "%s %v\n", prefix, err)
}

// ExitError carries the exit status a command wants the process to end with.
type ExitError struct {
	Code int
	Err  error // nil when the status is a coverage deficit
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("coverage below threshold (deficit %d)", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// AsExitError extracts an ExitError from err.
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", ErrorPrefix, msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".doxycov_history.db"
	}
	return filepath.Join(homeDir, ".doxycov_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so that "..." and at least one character fit.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
