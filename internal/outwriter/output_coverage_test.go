package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// sampleReport is B at 1 of 4 followed by A at 3 of 3, total 57 against 80.
func sampleReport() schema.CoverageReport {
	return schema.CoverageReport{
		Files: []schema.FileCoverage{
			{Path: "src/b.h", Percent: 25, Documented: 1, Total: 4, Undocumented: []string{"b1", "b2", "b3"}},
			{Path: "src/a.h", Percent: 100, Documented: 3, Total: 3, Undocumented: []string{}},
		},
		TotalDocumented:   4,
		TotalUndocumented: 3,
		TotalPercent:      57,
		Threshold:         80,
		Verdict:           23,
	}
}

func TestWriteCoverageText(t *testing.T) {
	t.Run("classic layout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeCoverageText(&buf, sampleReport()))
		expected := " 25% - src/b.h - (1 of 4)\n" +
			"\t b1\n\t b2\n\t b3\n" +
			"100% - src/a.h - (3 of 3)\n" +
			"\n57% API documentation coverage\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("fractional percent is truncated", func(t *testing.T) {
		report := schema.CoverageReport{
			Files:        []schema.FileCoverage{{Path: "x.h", Percent: 200.0 / 3.0, Documented: 2, Total: 3, Undocumented: []string{"z"}}},
			TotalPercent: 66,
		}
		var buf bytes.Buffer
		require.NoError(t, writeCoverageText(&buf, report))
		assert.Equal(t, " 66% - x.h - (2 of 3)\n\t z\n\n66% API documentation coverage\n", buf.String())
	})

	t.Run("empty report keeps the total line", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeCoverageText(&buf, schema.CoverageReport{TotalPercent: 100, Empty: true}))
		assert.Equal(t, "\n100% API documentation coverage\n", buf.String())
	})
}

func TestWriteCoverageTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 120}
	require.NoError(t, writeCoverageTable(&buf, sampleReport(), cfg))

	out := buf.String()
	assert.Contains(t, out, "src/b.h")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, contract.PoorValue)
	assert.Contains(t, out, contract.ExcellentValue)
	assert.Contains(t, out, "Showing 2 files (4 of 7 symbols documented, threshold 80%)")
	assert.Contains(t, out, "57% API documentation coverage")
}

func TestWriteCoverageCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCoverageCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rank", "file", "percent", "label", "documented", "total", "undocumented"}, records[0])
	assert.Equal(t, []string{"1", "src/b.h", "25.00", "Poor", "1", "4", "b1|b2|b3"}, records[1])
	assert.Equal(t, []string{"2", "src/a.h", "100.00", "Excellent", "3", "3", ""}, records[2])
}

func TestWriteCoverageReportFormats(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(dir, "report.json")}
		require.NoError(t, WriteCoverageReport(sampleReport(), cfg))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, float64(57), doc["total_percent"])
		assert.Equal(t, float64(23), doc["verdict"])

		files := doc["files"].([]any)
		first := files[0].(map[string]any)
		assert.Equal(t, float64(1), first["rank"])
		assert.Equal(t, "src/b.h", first["path"])
		assert.Equal(t, "Poor", first["label"])
	})

	t.Run("yaml", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.YAMLOut, OutputFile: filepath.Join(dir, "report.yaml")}
		require.NoError(t, WriteCoverageReport(sampleReport(), cfg))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		var doc coverageDocument
		require.NoError(t, yaml.Unmarshal(data, &doc))
		require.Len(t, doc.Files, 2)
		assert.Equal(t, "src/a.h", doc.Files[1].Path)
		assert.Equal(t, 2, doc.Files[1].Rank)
		assert.Equal(t, []string{"b1", "b2", "b3"}, doc.Files[0].Undocumented)
		assert.Equal(t, 2, doc.TotalFiles)
	})

	t.Run("text is the default", func(t *testing.T) {
		cfg := &contract.Config{OutputFile: filepath.Join(dir, "report.txt")}
		require.NoError(t, WriteCoverageReport(sampleReport(), cfg))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), " 25% - src/b.h - (1 of 4)\n")
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "report.parquet")}
		require.NoError(t, WriteCoverageReport(sampleReport(), cfg))

		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("parquet without a file", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut}
		err := WriteCoverageReport(sampleReport(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file")
	})
}

func TestWriteMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doxycov.prom")
	require.NoError(t, WriteMetricsFile(path, sampleReport(), 1500*time.Millisecond))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE doxycov_total_coverage_percent gauge")
	assert.Contains(t, out, "doxycov_total_coverage_percent 57\n")
	assert.Contains(t, out, "doxycov_verdict 23\n")
	assert.Contains(t, out, "doxycov_threshold_percent 80\n")
	assert.Contains(t, out, "doxycov_files 2\n")
	assert.Contains(t, out, "doxycov_run_duration_seconds 1.5\n")
	assert.Contains(t, out, `doxycov_file_coverage_percent{path="src/b.h"} 25`)
}

func TestWriteMetricsFileEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.prom")
	require.NoError(t, WriteMetricsFile(path, schema.CoverageReport{TotalPercent: 100, Empty: true, Threshold: 80}, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doxycov_total_coverage_percent 100\n")
	assert.NotContains(t, string(data), "doxycov_file_coverage_percent{")
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 15},
		{width: 100, expected: 50},
		{width: 300, expected: 80},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTablePathWidth(&contract.Config{Width: tt.width}), "width=%d", tt.width)
	}
}
