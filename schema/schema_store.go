package schema

import "time"

// RunSummary is what gets stored when a coverage run completes.
type RunSummary struct {
	TotalFiles        int
	TotalDocumented   int
	TotalUndocumented int
	TotalPercent      int
	Threshold         int
	Verdict           int
}

// HistoryRunRecord represents a row from the doxycov_runs table.
type HistoryRunRecord struct {
	RunID             int64
	RunUUID           string
	InputDir          string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalFiles        int32
	TotalDocumented   int32
	TotalUndocumented int32
	TotalPercent      int32
	Threshold         int32
	Verdict           int32
	ConfigParams      *string
}

// FileCoverageRecord represents a row from the doxycov_file_coverage table.
type FileCoverageRecord struct {
	RunID        int64
	FilePath     string
	Percent      float64
	Documented   int32
	Total        int32
	Undocumented int32
}
