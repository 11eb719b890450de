// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/doxycov/schema"
)

// HistoryManager defines the interface for reaching the history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking coverage runs over time.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, runUUID string, inputDir string, configParams map[string]any) (int64, error)

	// RecordFileCoverage stores the coverage of one file for a run
	RecordFileCoverage(runID int64, coverage schema.FileCoverage) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run, oldest first
	GetAllRuns() ([]schema.HistoryRunRecord, error)

	// GetAllFileCoverage returns every stored per-file row
	GetAllFileCoverage() ([]schema.FileCoverageRecord, error)

	// Close closes the underlying connection
	Close() error
}
