// Package parquet provides data structures and functions for exporting doxycov
// coverage reports and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/doxycov/schema"
	"github.com/parquet-go/parquet-go"
)

// CoverageRow is one line of a coverage report.
type CoverageRow struct {
	// Rank is the 1-based position in the ascending report
	Rank int32 `parquet:"rank,snappy"`

	// FilePath is the source path as reported by Doxygen
	FilePath string `parquet:"file_path,snappy"`

	// Percent is the unrounded per-file coverage
	Percent float64 `parquet:"percent,snappy"`

	// Documented is the number of documented symbols
	Documented int32 `parquet:"documented,snappy"`

	// Total is the number of documentable symbols
	Total int32 `parquet:"total,snappy"`

	// Label is the plain coverage label (Excellent, Good, Fair, Poor)
	Label string `parquet:"label,snappy"`

	// Undocumented holds the sorted distinct undocumented identifiers
	Undocumented []string `parquet:"undocumented"`
}

// HistoryRun represents a single recorded coverage run.
// This struct maps to the doxycov_runs database table.
type HistoryRun struct {
	RunID   int64  `parquet:"run_id,snappy"`
	RunUUID string `parquet:"run_uuid,snappy"`

	// InputDir is the XML directory the run read
	InputDir string `parquet:"input_dir,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is empty while the run is in progress
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalFiles        int32 `parquet:"total_files,snappy"`
	TotalDocumented   int32 `parquet:"total_documented,snappy"`
	TotalUndocumented int32 `parquet:"total_undocumented,snappy"`
	TotalPercent      int32 `parquet:"total_percent,snappy"`
	Threshold         int32 `parquet:"threshold,snappy"`
	Verdict           int32 `parquet:"verdict,snappy"`

	// ConfigParams contains the JSON-encoded run configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// HistoryFileCoverage is the stored coverage of one file within a run.
// This struct maps to the doxycov_file_coverage database table.
type HistoryFileCoverage struct {
	RunID        int64   `parquet:"run_id,snappy"`
	FilePath     string  `parquet:"file_path,snappy"`
	Percent      float64 `parquet:"percent,snappy"`
	Documented   int32   `parquet:"documented,snappy"`
	Total        int32   `parquet:"total,snappy"`
	Undocumented int32   `parquet:"undocumented,snappy"`
}

// writeRows writes data to outputPath with a schema inferred from T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer; a failure here leaves an unreadable file.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCoverageParquet writes a coverage report to a Parquet file.
func WriteCoverageParquet(data []CoverageRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHistoryRunsParquet writes a slice of HistoryRun structs to a Parquet file.
func WriteHistoryRunsParquet(data []HistoryRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHistoryFileCoverageParquet writes a slice of HistoryFileCoverage structs to a Parquet file.
func WriteHistoryFileCoverageParquet(data []HistoryFileCoverage, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertCoverageReport flattens a report into ranked rows.
func ConvertCoverageReport(report schema.CoverageReport, label func(float64) string) []CoverageRow {
	result := make([]CoverageRow, len(report.Files))
	for i, f := range report.Files {
		result[i] = CoverageRow{
			Rank:         int32(i + 1),
			FilePath:     f.Path,
			Percent:      f.Percent,
			Documented:   int32(f.Documented),
			Total:        int32(f.Total),
			Label:        label(f.Percent),
			Undocumented: f.Undocumented,
		}
	}
	return result
}

// ConvertHistoryRunRecords converts schema.HistoryRunRecord to HistoryRun for Parquet export.
func ConvertHistoryRunRecords(records []schema.HistoryRunRecord) []HistoryRun {
	result := make([]HistoryRun, len(records))
	for i, record := range records {
		result[i] = HistoryRun{
			RunID:             record.RunID,
			RunUUID:           record.RunUUID,
			InputDir:          record.InputDir,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			RunDurationMs:     record.RunDurationMs,
			TotalFiles:        record.TotalFiles,
			TotalDocumented:   record.TotalDocumented,
			TotalUndocumented: record.TotalUndocumented,
			TotalPercent:      record.TotalPercent,
			Threshold:         record.Threshold,
			Verdict:           record.Verdict,
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

// ConvertFileCoverageRecords converts schema.FileCoverageRecord to HistoryFileCoverage for Parquet export.
func ConvertFileCoverageRecords(records []schema.FileCoverageRecord) []HistoryFileCoverage {
	result := make([]HistoryFileCoverage, len(records))
	for i, record := range records {
		result[i] = HistoryFileCoverage{
			RunID:        record.RunID,
			FilePath:     record.FilePath,
			Percent:      record.Percent,
			Documented:   record.Documented,
			Total:        record.Total,
			Undocumented: record.Undocumented,
		}
	}
	return result
}

// ReadCoverageParquet loads a report written with --output parquet.
func ReadCoverageParquet(path string) ([]CoverageRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CoverageRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]CoverageRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read coverage rows: %w", err)
	}
	return rows[:n], nil
}
