package core

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
)

// ReportOptions control which files enter the report and the pass mark.
type ReportOptions struct {
	Threshold    int
	ExcludeDirs  []string
	ExcludeGlobs []string
}

// reportOptionsFromConfig builds ReportOptions from the validated config.
func reportOptionsFromConfig(cfg *contract.Config) ReportOptions {
	return ReportOptions{
		Threshold:    cfg.Threshold,
		ExcludeDirs:  cfg.ExcludeDirs,
		ExcludeGlobs: cfg.ExcludeGlobs,
	}
}

// FileCoverageOf sums every contribution for path. Counts are additive across
// records while undocumented identifiers are listed once, sorted.
func FileCoverageOf(path string, contributions []schema.Definitions) schema.FileCoverage {
	fc := schema.FileCoverage{Path: path, Undocumented: []string{}}
	seen := make(map[string]struct{})
	for _, defs := range contributions {
		yes, no := defs.Counts()
		fc.Documented += yes
		fc.Total += yes + no
		for name, documented := range defs {
			if documented {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			fc.Undocumented = append(fc.Undocumented, name)
		}
	}
	slices.Sort(fc.Undocumented)

	if fc.Total == 0 {
		fc.Percent = 100
	} else {
		fc.Percent = float64(fc.Documented) * 100.0 / float64(fc.Total)
	}
	return fc
}

// BuildReport computes per-file coverage, drops excluded and empty files,
// sorts ascending by percentage and derives the totals and verdict.
func BuildReport(table *schema.FileTable, opts ReportOptions) schema.CoverageReport {
	report := schema.CoverageReport{Threshold: opts.Threshold, Files: []schema.FileCoverage{}}

	for _, path := range table.Paths() {
		if contract.IsExcluded(path, opts.ExcludeDirs, opts.ExcludeGlobs) {
			slog.Debug("excluding file", "path", path)
			continue
		}
		fc := FileCoverageOf(path, table.Get(path))
		if fc.Total == 0 {
			continue
		}
		report.Files = append(report.Files, fc)
		report.TotalDocumented += fc.Documented
		report.TotalUndocumented += fc.Total - fc.Documented
	}

	// Stable keeps first-seen order among equal percentages.
	sort.SliceStable(report.Files, func(i, j int) bool {
		return report.Files[i].Percent < report.Files[j].Percent
	})

	report.TotalPercent, report.Empty = totalPercent(report.TotalDocumented, report.TotalUndocumented)
	if report.Empty {
		slog.Warn("coverage computed over an empty corpus", "err", schema.ErrEmptyCorpus)
	}
	report.Verdict = Verdict(report.TotalPercent, opts.Threshold)
	return report
}

// totalPercent uses truncating integer division, unlike the per-file float
// percentage. A file at 66.67% prints as 66 and the total also reads 66, but
// the two values are computed differently and must stay that way for report
// compatibility. Zero symbols count as fully covered.
func totalPercent(documented, undocumented int) (percent int, empty bool) {
	total := documented + undocumented
	if total == 0 {
		return 100, true
	}
	return documented * 100 / total, false
}

// Verdict returns 0 when totalPercent is strictly above threshold, otherwise
// the deficit threshold - totalPercent.
func Verdict(totalPercent, threshold int) int {
	if totalPercent > threshold {
		return 0
	}
	return threshold - totalPercent
}
