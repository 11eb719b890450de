// Package main provides a performance benchmarking tool for the doxycov CLI.
// It generates synthetic Doxygen XML corpora of increasing size, runs doxycov
// against each with several output formats and history backends, and writes
// the averaged timings to a CSV file.
//
// Prerequisites:
// - doxycov binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where corpora and the SQLite history are generated
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CorpusSize describes one generated corpus.
type CorpusSize struct {
	Name           string
	Files          int
	MembersPerFile int
}

// BenchmarkResult holds the averaged timings of one scenario.
type BenchmarkResult struct {
	Corpus     string
	Scenario   string
	ColdTime   string
	WarmTime   string
	SymbolsRun int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Runs      int
	Sizes     []CorpusSize
	Scenarios map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 5 * time.Minute,
		Runs:    4,
		Sizes: []CorpusSize{
			{"small", 50, 20},
			{"medium", 500, 40},
			{"large", 5000, 60},
		},
		Scenarios: map[string][]string{
			"text":    {},
			"json":    {"--output", "json", "--output-file", os.DevNull},
			"parquet": {"--output", "parquet", "--output-file", filepath.Join(workDir, "report.parquet")},
			"history": {"--history-backend", "sqlite", "--history-db-connect", filepath.Join(workDir, "history.db")},
		},
	}

	if _, err := exec.LookPath("doxycov"); err != nil {
		fmt.Printf("Prerequisites check failed: doxycov binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates every corpus and times each scenario against it.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %d scenarios, %d runs each, %v timeout\n",
		len(config.Sizes), len(config.Scenarios), config.Runs, config.Timeout)

	for _, size := range config.Sizes {
		corpusDir := filepath.Join(config.WorkDir, "corpus-"+size.Name)
		if err := generateCorpus(corpusDir, size); err != nil {
			fmt.Printf("Failed to generate %s corpus: %v\n", size.Name, err)
			continue
		}
		fmt.Printf("Benchmarking %s corpus (%d files, %d symbols)\n", size.Name, size.Files, size.Files*size.MembersPerFile)

		for _, scenario := range []string{"text", "json", "parquet", "history"} {
			cold, warm := runScenario(config, corpusDir, config.Scenarios[scenario])
			fmt.Printf("  %-8s cold: %s, warm average: %s\n", scenario, cold, warm)
			results = append(results, BenchmarkResult{
				Corpus:     size.Name,
				Scenario:   scenario,
				ColdTime:   cold,
				WarmTime:   warm,
				SymbolsRun: size.Files * size.MembersPerFile,
			})
		}
	}

	return results
}

// runScenario runs doxycov config.Runs times, treating the first successful run as cold.
func runScenario(config BenchmarkConfig, corpusDir string, extraArgs []string) (coldTime, warmAvg string) {
	args := append([]string{"--noerror"}, extraArgs...)
	args = append(args, corpusDir)

	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "doxycov", args...)
		cmd.Dir = config.WorkDir
		err := cmd.Run()
		cancel()
		if err == nil {
			times = append(times, time.Since(start).Seconds())
		}
	}

	if len(times) == 0 {
		return "TIMEOUT", "TIMEOUT"
	}
	coldTime = fmt.Sprintf("%.3fs", times[0])
	if len(times) == 1 {
		return coldTime, "n/a"
	}
	var sum float64
	for _, t := range times[1:] {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
}

// generateCorpus writes an index and one file compound per source file.
// Every third member is left undocumented.
func generateCorpus(dir string, size CorpusSize) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var index strings.Builder
	index.WriteString("<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygenindex version=\"1.9.8\">\n")
	for f := range size.Files {
		refid := fmt.Sprintf("file_%d_8h", f)
		fmt.Fprintf(&index, "  <compound refid=%q kind=\"file\"><name>file_%d.h</name></compound>\n", refid, f)

		var body strings.Builder
		body.WriteString("<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygen>\n  <compounddef kind=\"file\">\n    <sectiondef kind=\"func\">\n")
		for m := range size.MembersPerFile {
			brief := "<briefdescription><para>Generated.</para></briefdescription>"
			if m%3 == 0 {
				brief = "<briefdescription></briefdescription>"
			}
			fmt.Fprintf(&body, "      <memberdef kind=\"function\" id=\"f%d_m%d\" static=\"no\"><name>fn_%d_%d</name>%s<location file=\"src/file_%d.h\"/></memberdef>\n",
				f, m, f, m, brief, f)
		}
		body.WriteString("    </sectiondef>\n  </compounddef>\n</doxygen>\n")
		if err := os.WriteFile(filepath.Join(dir, refid+".xml"), []byte(body.String()), 0o644); err != nil {
			return err
		}
	}
	index.WriteString("</doxygenindex>\n")
	return os.WriteFile(filepath.Join(dir, "index.xml"), []byte(index.String()), 0o644)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/doxycov_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"corpus", "scenario", "symbols", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Corpus, r.Scenario, fmt.Sprint(r.SymbolsRun), r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-7s %-8s: Cold: %s, Warm: %s\n", r.Corpus, r.Scenario, r.ColdTime, r.WarmTime)
	}
}
