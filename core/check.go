package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/outwriter"
	"github.com/huangsam/doxycov/schema"
)

// GetCoverageResults collects the XML tree named by cfg and builds the report
// without writing anything.
func GetCoverageResults(ctx context.Context, cfg *contract.Config) (schema.CoverageReport, error) {
	table, err := CollectFiles(ctx, cfg.InputDir)
	if err != nil {
		return schema.CoverageReport{}, err
	}
	return BuildReport(table, reportOptionsFromConfig(cfg)), nil
}

// ExecuteCoverage runs a full coverage check: collect, report, write output,
// record history and metrics. The returned result carries the exit code with
// --noerror already applied. Errors are fatal to the run.
func ExecuteCoverage(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.CheckResult, error) {
	start := time.Now()
	runUUID := uuid.New().String()
	slog.Info("starting coverage run", "run", runUUID, "dir", cfg.InputDir, "threshold", cfg.Threshold)

	report, err := GetCoverageResults(ctx, cfg)
	if err != nil {
		return schema.CheckResult{}, err
	}
	if report.Empty {
		contract.LogWarn("Empty corpus", schema.ErrEmptyCorpus)
	}

	if err := outwriter.WriteCoverageReport(report, cfg); err != nil {
		return schema.CheckResult{}, fmt.Errorf("failed to write report: %w", err)
	}

	recordHistory(cfg, mgr, report, runUUID, start)

	if cfg.MetricsFile != "" {
		if err := outwriter.WriteMetricsFile(cfg.MetricsFile, report, time.Since(start)); err != nil {
			return schema.CheckResult{}, fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	result := schema.CheckResult{
		Passed:       report.Verdict == 0,
		Verdict:      report.Verdict,
		Threshold:    report.Threshold,
		TotalPercent: report.TotalPercent,
		ExitCode:     contract.ExitCode(nil, report.Verdict, cfg.NoError),
	}
	slog.Info("finished coverage run", "run", runUUID, "total", report.TotalPercent, "verdict", report.Verdict, "duration", time.Since(start))
	return result, nil
}

// recordHistory stores the run when a history store is configured.
// Storage failures only warn; they never change the verdict.
func recordHistory(cfg *contract.Config, mgr contract.HistoryManager, report schema.CoverageReport, runUUID string, start time.Time) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	configParams := map[string]any{
		"threshold":     cfg.Threshold,
		"exclude_dirs":  cfg.ExcludeDirs,
		"exclude_globs": cfg.ExcludeGlobs,
		"output":        string(cfg.Output),
	}
	runID, err := store.BeginRun(start, runUUID, cfg.InputDir, configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	if runID == 0 {
		return
	}

	for _, fc := range report.Files {
		if err := store.RecordFileCoverage(runID, fc); err != nil {
			contract.LogWarn("Failed to record file coverage", err)
			return
		}
	}

	summary := schema.RunSummary{
		TotalFiles:        len(report.Files),
		TotalDocumented:   report.TotalDocumented,
		TotalUndocumented: report.TotalUndocumented,
		TotalPercent:      report.TotalPercent,
		Threshold:         report.Threshold,
		Verdict:           report.Verdict,
	}
	if err := store.EndRun(runID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
