package outwriter

import (
	"fmt"
	"time"

	"github.com/huangsam/doxycov/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "doxycov"

// WriteMetricsFile writes the report as Prometheus text exposition to path,
// suitable for the node_exporter textfile collector.
func WriteMetricsFile(path string, report schema.CoverageReport, duration time.Duration) error {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, value float64) error {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: metricsNamespace, Name: name, Help: help})
		g.Set(value)
		return reg.Register(g)
	}

	simple := []struct {
		name, help string
		value      float64
	}{
		{"total_coverage_percent", "Aggregate API documentation coverage, truncated to an integer.", float64(report.TotalPercent)},
		{"threshold_percent", "Configured coverage threshold.", float64(report.Threshold)},
		{"verdict", "Coverage deficit below the threshold; 0 when passing.", float64(report.Verdict)},
		{"documented_symbols", "Documented symbols across reported files.", float64(report.TotalDocumented)},
		{"undocumented_symbols", "Undocumented symbols across reported files.", float64(report.TotalUndocumented)},
		{"files", "Number of reported files.", float64(len(report.Files))},
		{"run_duration_seconds", "Wall time of the coverage run.", duration.Seconds()},
	}
	for _, m := range simple {
		if err := gauge(m.name, m.help, m.value); err != nil {
			return fmt.Errorf("failed to register metric %s: %w", m.name, err)
		}
	}

	perFile := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "file_coverage_percent",
		Help:      "Per-file API documentation coverage.",
	}, []string{"path"})
	for _, f := range report.Files {
		perFile.WithLabelValues(f.Path).Set(f.Percent)
	}
	if err := reg.Register(perFile); err != nil {
		return fmt.Errorf("failed to register metric file_coverage_percent: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
