package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const historyTimeFormat = "2006-01-02 15:04:05"

// historyRun is the structured form of a stored run.
type historyRun struct {
	RunID             int64  `json:"run_id" yaml:"run_id"`
	RunUUID           string `json:"run_uuid" yaml:"run_uuid"`
	InputDir          string `json:"input_dir" yaml:"input_dir"`
	StartTime         string `json:"start_time" yaml:"start_time"`
	DurationMs        *int32 `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	TotalFiles        int32  `json:"total_files" yaml:"total_files"`
	TotalDocumented   int32  `json:"total_documented" yaml:"total_documented"`
	TotalUndocumented int32  `json:"total_undocumented" yaml:"total_undocumented"`
	TotalPercent      int32  `json:"total_percent" yaml:"total_percent"`
	Threshold         int32  `json:"threshold" yaml:"threshold"`
	Verdict           int32  `json:"verdict" yaml:"verdict"`
	Finished          bool   `json:"finished" yaml:"finished"`
}

func toHistoryRuns(runs []schema.HistoryRunRecord) []historyRun {
	out := make([]historyRun, len(runs))
	for i, r := range runs {
		out[i] = historyRun{
			RunID:             r.RunID,
			RunUUID:           r.RunUUID,
			InputDir:          r.InputDir,
			StartTime:         r.StartTime.Format(historyTimeFormat),
			DurationMs:        r.RunDurationMs,
			TotalFiles:        r.TotalFiles,
			TotalDocumented:   r.TotalDocumented,
			TotalUndocumented: r.TotalUndocumented,
			TotalPercent:      r.TotalPercent,
			Threshold:         r.Threshold,
			Verdict:           r.Verdict,
			Finished:          r.EndTime != nil,
		}
	}
	return out
}

// WriteHistoryRuns prints stored runs, newest last, using the configured output format.
// Text and table output share the same table layout.
func WriteHistoryRuns(runs []schema.HistoryRunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, runs)
		}, "Wrote CSV")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, toHistoryRuns(runs))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, toHistoryRuns(runs))
		}, "Wrote YAML")
	case schema.ParquetOut:
		return fmt.Errorf("parquet is not supported for history listing; use 'history export'")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, runs, cfg)
		}, "Wrote table")
	}
}

func writeHistoryTable(w io.Writer, runs []schema.HistoryRunRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Started", "Input", "Files", "Coverage", "Threshold", "Verdict"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	pathWidth := GetMaxTablePathWidth(cfg)

	var data [][]string
	for _, r := range runs {
		verdict := "running"
		if r.EndTime != nil {
			verdict = strconv.Itoa(int(r.Verdict))
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Local().Format(historyTimeFormat),
			contract.TruncatePath(r.InputDir, pathWidth),
			strconv.Itoa(int(r.TotalFiles)),
			fmt.Sprintf("%d%% %s", r.TotalPercent, label(float64(r.TotalPercent))),
			fmt.Sprintf("%d%%", r.Threshold),
			verdict,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs))
	return err
}

func writeHistoryCSV(w io.Writer, runs []schema.HistoryRunRecord) error {
	header := []string{"run_id", "run_uuid", "input_dir", "start_time", "total_files", "total_documented", "total_undocumented", "total_percent", "threshold", "verdict"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			rec := []string{
				strconv.FormatInt(r.RunID, 10),
				r.RunUUID,
				r.InputDir,
				r.StartTime.UTC().Format(historyTimeFormat),
				strconv.Itoa(int(r.TotalFiles)),
				strconv.Itoa(int(r.TotalDocumented)),
				strconv.Itoa(int(r.TotalUndocumented)),
				strconv.Itoa(int(r.TotalPercent)),
				strconv.Itoa(int(r.Threshold)),
				strconv.Itoa(int(r.Verdict)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHistoryStatus prints a summary of the configured history store.
func WriteHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(historyTimeFormat))
		fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(historyTimeFormat))
		fmt.Fprintf(w, "Last Coverage: %d%%\n", status.LastPercent)
	}
	fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
