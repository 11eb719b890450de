package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/parquet"
)

// ExecuteHistoryExport writes the stored runs and file coverage to two Parquet
// files derived from outputFile.
func ExecuteHistoryExport(w io.Writer, mgr contract.HistoryManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetHistoryStore()
	if store == nil {
		return errors.New("history is disabled; set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no history data found to export")
	}

	fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[fileCoverageTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	files, err := store.GetAllFileCoverage()
	if err != nil {
		return fmt.Errorf("failed to retrieve file coverage: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertHistoryRunRecords(runs)
	if err := parquet.WriteHistoryRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	filesFile := outputFile + ".file_coverage.parquet"
	parquetFiles := parquet.ConvertFileCoverageRecords(files)
	if err := parquet.WriteHistoryFileCoverageParquet(parquetFiles, filesFile); err != nil {
		return fmt.Errorf("failed to write file coverage: %w", err)
	}
	fmt.Fprintf(w, "Exported %d file coverage records to: %s\n", len(parquetFiles), filesFile)

	return nil
}
