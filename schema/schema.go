// Package schema has models, constants and sentinel errors for all parts of doxycov.
package schema

// Definitions maps a symbol identifier to whether it carries a human-written description.
type Definitions map[string]bool

// Counts returns the number of documented and undocumented entries.
func (d Definitions) Counts() (documented, undocumented int) {
	for _, ok := range d {
		if ok {
			documented++
		} else {
			undocumented++
		}
	}
	return documented, undocumented
}

// Record is the extractor output for one compound XML document.
type Record struct {
	SourceFile  string      // Path from the first considered member's location, or the XML path itself
	Definitions Definitions // Identifier to documented flag
}

// Compound is one <compound> entry of the Doxygen index.
type Compound struct {
	Kind  string `json:"kind"`
	RefID string `json:"refid"`
}

// FileTable groups every record's definitions under its resolved source path.
// Paths keep the order in which they were first added.
type FileTable struct {
	order   []string
	entries map[string][]Definitions
}

// NewFileTable returns an empty table.
func NewFileTable() *FileTable {
	return &FileTable{entries: make(map[string][]Definitions)}
}

// Add appends defs to the contributions of path.
func (t *FileTable) Add(path string, defs Definitions) {
	if _, ok := t.entries[path]; !ok {
		t.order = append(t.order, path)
	}
	t.entries[path] = append(t.entries[path], defs)
}

// Paths returns the paths in first-seen order.
func (t *FileTable) Paths() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Get returns every contribution for path.
func (t *FileTable) Get(path string) []Definitions {
	return t.entries[path]
}

// Len returns the number of distinct paths.
func (t *FileTable) Len() int {
	return len(t.order)
}
