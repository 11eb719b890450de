package doxygen

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/doxycov/schema"
)

// IndexFile is the name of the root index Doxygen writes into its XML directory.
const IndexFile = "index.xml"

// ParseIndexFile reads <dir>/index.xml.
func ParseIndexFile(dir string) ([]schema.Compound, error) {
	path := filepath.Join(dir, IndexFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("documentation not present at %s: %w", path, schema.ErrMissingIndex)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	compounds, err := ParseIndex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return compounds, nil
}

// ParseIndex lists the root element's direct <compound> children.
func ParseIndex(r io.Reader) ([]schema.Compound, error) {
	root, err := decodeDocument(r)
	if err != nil {
		return nil, err
	}

	entries := root.children("compound")
	compounds := make([]schema.Compound, 0, len(entries))
	for _, entry := range entries {
		kind, _ := entry.attr("kind")
		refid, _ := entry.attr("refid")
		compounds = append(compounds, schema.Compound{Kind: kind, RefID: refid})
	}
	return compounds, nil
}

// CompoundPath returns where the document backing c lives under dir.
func CompoundPath(dir string, c schema.Compound) string {
	return filepath.Join(dir, c.RefID+".xml")
}
