// Package core has the coverage aggregation logic and the run entry points.
package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huangsam/doxycov/internal/doxygen"
	"github.com/huangsam/doxycov/schema"
)

// CollectFiles reads the Doxygen index under dir, runs the extractor over every
// non-directory compound and groups non-empty records by source file.
// Any extraction failure aborts the whole collection.
func CollectFiles(ctx context.Context, dir string) (*schema.FileTable, error) {
	compounds, err := doxygen.ParseIndexFile(dir)
	if err != nil {
		return nil, err
	}

	table := schema.NewFileTable()
	for _, c := range compounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.Kind == schema.DirKind {
			continue
		}

		rec, err := doxygen.ParseCompoundFile(doxygen.CompoundPath(dir, c))
		if err != nil {
			return nil, fmt.Errorf("failed to extract compound %s: %w", c.RefID, err)
		}
		if len(rec.Definitions) == 0 {
			slog.Debug("skipping compound without documentable members", "refid", c.RefID, "kind", c.Kind)
			continue
		}
		table.Add(rec.SourceFile, rec.Definitions)
	}

	slog.Debug("collected coverage records", "dir", dir, "compounds", len(compounds), "files", table.Len())
	return table, nil
}
