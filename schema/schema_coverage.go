package schema

// FileCoverage is the derived coverage of one source path.
type FileCoverage struct {
	Path         string   `json:"path" yaml:"path"`
	Percent      float64  `json:"percent" yaml:"percent"`
	Documented   int      `json:"documented" yaml:"documented"`
	Total        int      `json:"total" yaml:"total"`
	Undocumented []string `json:"undocumented" yaml:"undocumented"`
}

// CoverageReport is the sorted per-file coverage plus the aggregate verdict.
type CoverageReport struct {
	Files             []FileCoverage `json:"files" yaml:"files"`
	TotalDocumented   int            `json:"total_documented" yaml:"total_documented"`
	TotalUndocumented int            `json:"total_undocumented" yaml:"total_undocumented"`
	TotalPercent      int            `json:"total_percent" yaml:"total_percent"`
	Empty             bool           `json:"empty" yaml:"empty"`
	Threshold         int            `json:"threshold" yaml:"threshold"`
	Verdict           int            `json:"verdict" yaml:"verdict"`
}

// TotalSymbols returns the number of symbols counted in the aggregate.
func (r CoverageReport) TotalSymbols() int {
	return r.TotalDocumented + r.TotalUndocumented
}

// CheckResult is the outcome of a coverage run as seen by the caller.
type CheckResult struct {
	Passed       bool `json:"passed"`
	Verdict      int  `json:"verdict"`
	Threshold    int  `json:"threshold"`
	TotalPercent int  `json:"total_percent"`
	ExitCode     int  `json:"exit_code"`
}
