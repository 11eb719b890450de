package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/parquet"
	"github.com/huangsam/doxycov/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// rankedFile is a file entry enriched with its position and label.
type rankedFile struct {
	Rank                int    `json:"rank" yaml:"rank"`
	Label               string `json:"label" yaml:"label"`
	schema.FileCoverage `yaml:",inline"`
}

// coverageDocument is the structured form used by JSON and YAML output.
type coverageDocument struct {
	Files             []rankedFile `json:"files" yaml:"files"`
	TotalFiles        int          `json:"total_files" yaml:"total_files"`
	TotalDocumented   int          `json:"total_documented" yaml:"total_documented"`
	TotalUndocumented int          `json:"total_undocumented" yaml:"total_undocumented"`
	TotalPercent      int          `json:"total_percent" yaml:"total_percent"`
	Threshold         int          `json:"threshold" yaml:"threshold"`
	Verdict           int          `json:"verdict" yaml:"verdict"`
	Empty             bool         `json:"empty" yaml:"empty"`
}

func newCoverageDocument(report schema.CoverageReport) coverageDocument {
	files := make([]rankedFile, len(report.Files))
	for i, f := range report.Files {
		files[i] = rankedFile{Rank: i + 1, Label: contract.GetPlainLabel(f.Percent), FileCoverage: f}
	}
	return coverageDocument{
		Files:             files,
		TotalFiles:        len(report.Files),
		TotalDocumented:   report.TotalDocumented,
		TotalUndocumented: report.TotalUndocumented,
		TotalPercent:      report.TotalPercent,
		Threshold:         report.Threshold,
		Verdict:           report.Verdict,
		Empty:             report.Empty,
	}
}

// writeCoverageText writes one line per file, the undocumented identifiers
// under it, then a blank line and the aggregate percentage.
func writeCoverageText(w io.Writer, report schema.CoverageReport) error {
	for _, f := range report.Files {
		if _, err := fmt.Fprintf(w, "%3d%% - %s - (%d of %d)\n", int(f.Percent), f.Path, f.Documented, f.Total); err != nil {
			return err
		}
		for _, name := range f.Undocumented {
			if _, err := fmt.Fprintf(w, "\t %s\n", name); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%d%% API documentation coverage\n", report.TotalPercent)
	return err
}

// writeCoverageTable generates and writes the human-readable table.
func writeCoverageTable(w io.Writer, report schema.CoverageReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Coverage", "Label", "Documented", "Total"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	pathWidth := GetMaxTablePathWidth(cfg)

	var data [][]string
	for i, f := range report.Files {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			fmt.Sprintf("%.1f%%", f.Percent),
			label(f.Percent),
			strconv.Itoa(f.Documented),
			strconv.Itoa(f.Total),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d files (%d of %d symbols documented, threshold %d%%)\n",
		len(report.Files), report.TotalDocumented, report.TotalSymbols(), report.Threshold); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d%% API documentation coverage\n", report.TotalPercent)
	return err
}

// writeCoverageCSV writes the report in CSV format. Undocumented identifiers
// are joined with "|" into a single column.
func writeCoverageCSV(w io.Writer, report schema.CoverageReport) error {
	header := []string{"rank", "file", "percent", "label", "documented", "total", "undocumented"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range report.Files {
			rec := []string{
				strconv.Itoa(i + 1),
				f.Path,
				strconv.FormatFloat(f.Percent, 'f', 2, 64),
				contract.GetPlainLabel(f.Percent),
				strconv.Itoa(f.Documented),
				strconv.Itoa(f.Total),
				strings.Join(f.Undocumented, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCoverageParquet needs a real file; stdout cannot hold Parquet.
func writeCoverageParquet(report schema.CoverageReport, outputFile string) error {
	if outputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertCoverageReport(report, contract.GetPlainLabel)
	if err := parquet.WriteCoverageParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}
