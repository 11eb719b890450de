// Package outwriter renders coverage reports and run history.
package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
)

// WriteCoverageReport outputs the report, dispatching on the configured output format.
// Text is the default and matches the classic line-per-file layout.
func WriteCoverageReport(report schema.CoverageReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.TableOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageTable(w, report, cfg)
		}, "Wrote table")
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageCSV(w, report)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newCoverageDocument(report))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newCoverageDocument(report))
		}, "Wrote YAML"); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeCoverageParquet(report, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageText(w, report)
		}, "Wrote report")
	}
	return nil
}
