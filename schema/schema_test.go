package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinitionsCounts(t *testing.T) {
	tests := []struct {
		name         string
		defs         Definitions
		documented   int
		undocumented int
	}{
		{"empty", Definitions{}, 0, 0},
		{"all documented", Definitions{"a": true, "b": true}, 2, 0},
		{"mixed", Definitions{"a": true, "b": false, "c": false}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yes, no := tt.defs.Counts()
			assert.Equal(t, tt.documented, yes)
			assert.Equal(t, tt.undocumented, no)
		})
	}
}

func TestFileTable(t *testing.T) {
	table := NewFileTable()
	table.Add("b.h", Definitions{"x": true})
	table.Add("a.h", Definitions{"y": false})
	table.Add("b.h", Definitions{"z": false})

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"b.h", "a.h"}, table.Paths(), "paths keep first-seen order")
	assert.Len(t, table.Get("b.h"), 2)
	assert.Nil(t, table.Get("missing.h"))

	paths := table.Paths()
	paths[0] = "mutated"
	assert.Equal(t, "b.h", table.Paths()[0], "Paths returns a copy")
}

func TestCoverageReportTotalSymbols(t *testing.T) {
	r := CoverageReport{TotalDocumented: 4, TotalUndocumented: 3}
	assert.Equal(t, 7, r.TotalSymbols())
}
