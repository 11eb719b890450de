package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/iocache"
	"github.com/huangsam/doxycov/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// endToEndCorpus has A with 3 of 3 documented and B with 1 of 4.
func endToEndCorpus(t *testing.T) string {
	return writeCorpus(t,
		fixtureCompound{refid: "a_8h", kind: "file", body: compoundDoc(membersFor("A", "a", 3, 0)...)},
		fixtureCompound{refid: "b_8h", kind: "file", body: compoundDoc(membersFor("B", "b", 1, 3)...)},
	)
}

func TestCollectFiles(t *testing.T) {
	t.Run("groups records and skips dirs and empty records", func(t *testing.T) {
		dir := writeCorpus(t,
			fixtureCompound{refid: "foo_8h", kind: "file", body: compoundDoc(member("foo", true, "src/foo.h"))},
			fixtureCompound{refid: "dir_src", kind: "dir"}, // no backing file; must never be opened
			fixtureCompound{refid: "classFoo", kind: "class", body: compoundDoc(member("Foo::bar", false, "src/foo.h"))},
			fixtureCompound{refid: "static_8c", kind: "file", body: compoundDoc(staticMember("helper", "src/static.c"))},
		)

		table, err := CollectFiles(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"src/foo.h"}, table.Paths())
		assert.Len(t, table.Get("src/foo.h"), 2)
	})

	t.Run("missing index is fatal", func(t *testing.T) {
		_, err := CollectFiles(context.Background(), t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrMissingIndex))
	})

	t.Run("malformed compound aborts the run", func(t *testing.T) {
		dir := writeCorpus(t,
			fixtureCompound{refid: "good", kind: "file", body: compoundDoc(member("ok", true, "ok.h"))},
			fixtureCompound{refid: "bad", kind: "file", body: "<doxygen><compounddef>"},
		)
		_, err := CollectFiles(context.Background(), dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrMalformedInput))
	})

	t.Run("missing compound file aborts the run", func(t *testing.T) {
		dir := writeCorpus(t, fixtureCompound{refid: "ghost", kind: "file"})
		_, err := CollectFiles(context.Background(), dir)
		assert.Error(t, err)
	})

	t.Run("fallback path when no location", func(t *testing.T) {
		doc := compoundDoc(`<memberdef kind="variable" id="v1"><name>v</name></memberdef>`)
		dir := writeCorpus(t, fixtureCompound{refid: "noloc", kind: "file", body: doc})
		table, err := CollectFiles(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "noloc.xml")}, table.Paths())
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := endToEndCorpus(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := CollectFiles(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// runConfig returns a text-output config writing to a temp file.
func runConfig(t *testing.T, dir string) *contract.Config {
	return &contract.Config{
		InputDir:       dir,
		Threshold:      80,
		Output:         schema.TextOut,
		OutputFile:     filepath.Join(t.TempDir(), "report.txt"),
		HistoryBackend: schema.NoneBackend,
	}
}

func TestExecuteCoverage_EndToEnd(t *testing.T) {
	dir := endToEndCorpus(t)
	cfg := runConfig(t, dir)

	result, err := ExecuteCoverage(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 57, result.TotalPercent)
	assert.Equal(t, 23, result.Verdict)
	assert.Equal(t, 23, result.ExitCode)

	out, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	expected := " 25% - B - (1 of 4)\n" +
		"\t b_undoc0\n" +
		"\t b_undoc1\n" +
		"\t b_undoc2\n" +
		"100% - A - (3 of 3)\n" +
		"\n" +
		"57% API documentation coverage\n"
	assert.Equal(t, expected, string(out))
}

func TestExecuteCoverage_NoError(t *testing.T) {
	cfg := runConfig(t, endToEndCorpus(t))
	cfg.NoError = true

	result, err := ExecuteCoverage(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 23, result.Verdict)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecuteCoverage_EmptyCorpus(t *testing.T) {
	dir := writeCorpus(t, fixtureCompound{refid: "static_8c", kind: "file", body: compoundDoc(staticMember("helper", "static.c"))})
	cfg := runConfig(t, dir)

	result, err := ExecuteCoverage(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.TotalPercent)
	assert.Equal(t, 0, result.ExitCode)

	out, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "\n100% API documentation coverage\n", string(out))
}

func TestExecuteCoverage_MissingIndex(t *testing.T) {
	cfg := runConfig(t, t.TempDir())
	_, err := ExecuteCoverage(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrMissingIndex))
}

func TestExecuteCoverage_RecordsHistory(t *testing.T) {
	cfg := runConfig(t, endToEndCorpus(t))

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, mock.AnythingOfType("string"), cfg.InputDir, mock.Anything).Return(int64(7), nil).Once()
	store.On("RecordFileCoverage", int64(7), mock.AnythingOfType("schema.FileCoverage")).Return(nil).Twice()
	store.On("EndRun", int64(7), mock.Anything, schema.RunSummary{
		TotalFiles:        2,
		TotalDocumented:   4,
		TotalUndocumented: 3,
		TotalPercent:      57,
		Threshold:         80,
		Verdict:           23,
	}).Return(nil).Once()

	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	_, err := ExecuteCoverage(context.Background(), cfg, mgr)
	require.NoError(t, err)
	store.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestExecuteCoverage_HistoryFailureDoesNotFailRun(t *testing.T) {
	cfg := runConfig(t, endToEndCorpus(t))

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	result, err := ExecuteCoverage(context.Background(), cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, 23, result.Verdict)
	store.AssertNotCalled(t, "RecordFileCoverage", mock.Anything, mock.Anything)
}

func TestExecuteCoverage_MetricsFile(t *testing.T) {
	cfg := runConfig(t, endToEndCorpus(t))
	cfg.MetricsFile = filepath.Join(t.TempDir(), "doxycov.prom")

	_, err := ExecuteCoverage(context.Background(), cfg, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doxycov_total_coverage_percent 57")
	assert.Contains(t, string(data), "doxycov_verdict 23")
}

func TestGetCoverageResults(t *testing.T) {
	cfg := runConfig(t, endToEndCorpus(t))
	cfg.ExcludeDirs = []string{"B"}

	report, err := GetCoverageResults(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "A", report.Files[0].Path)
	assert.Equal(t, 100, report.TotalPercent)
	assert.Equal(t, 0, report.Verdict)
}
