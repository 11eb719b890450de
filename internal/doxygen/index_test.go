package doxygen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/doxycov/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `<?xml version='1.0' encoding='UTF-8' standalone='no'?>
<doxygenindex version="1.9.8">
  <compound refid="foo_8h" kind="file"><name>foo.h</name>
    <member refid="foo_8h_1a" kind="function"><name>foo</name></member>
  </compound>
  <compound refid="dir_abc" kind="dir"><name>src</name></compound>
  <compound refid="classBar" kind="class"><name>Bar</name></compound>
</doxygenindex>`

func TestParseIndex(t *testing.T) {
	compounds, err := ParseIndex(strings.NewReader(sampleIndex))
	require.NoError(t, err)
	assert.Equal(t, []schema.Compound{
		{Kind: "file", RefID: "foo_8h"},
		{Kind: "dir", RefID: "dir_abc"},
		{Kind: "class", RefID: "classBar"},
	}, compounds)
}

func TestParseIndexFile(t *testing.T) {
	t.Run("missing index", func(t *testing.T) {
		_, err := ParseIndexFile(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrMissingIndex))
	})

	t.Run("malformed index", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("<doxygenindex>"), 0o644))
		_, err := ParseIndexFile(dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrMalformedInput))
	})

	t.Run("valid index", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(sampleIndex), 0o644))
		compounds, err := ParseIndexFile(dir)
		require.NoError(t, err)
		assert.Len(t, compounds, 3)
	})
}

func TestCompoundPath(t *testing.T) {
	got := CompoundPath("xml", schema.Compound{Kind: "file", RefID: "foo_8h"})
	assert.Equal(t, filepath.Join("xml", "foo_8h.xml"), got)
}
