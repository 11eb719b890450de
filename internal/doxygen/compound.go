package doxygen

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/doxycov/schema"
)

// descriptionTags are checked in this order; any child element in one of them
// marks the member as documented.
var descriptionTags = []string{"briefdescription", "detaileddescription", "inbodydescription"}

// ParseCompoundFile runs ParseCompound over the file at path. The file is
// closed before returning.
func ParseCompoundFile(path string) (schema.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Record{}, fmt.Errorf("failed to open compound %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rec, err := ParseCompound(f, path)
	if err != nil {
		return schema.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// ParseCompound extracts the documentable members of one compound document.
// fallbackPath becomes the record's source file when no considered member
// carries a location.
func ParseCompound(r io.Reader, fallbackPath string) (schema.Record, error) {
	root, err := decodeDocument(r)
	if err != nil {
		return schema.Record{}, err
	}

	rec := schema.Record{Definitions: make(schema.Definitions)}
	for _, compound := range root.children("compounddef") {
		for _, member := range compound.descendants("memberdef") {
			if !isDocumentable(member) {
				continue
			}
			if rec.SourceFile == "" {
				if loc := member.child("location"); loc != nil {
					rec.SourceFile, _ = loc.attr("file")
				}
			}
			rec.Definitions[identifier(member)] = isDocumented(member)
		}
	}

	if rec.SourceFile == "" {
		rec.SourceFile = fallbackPath
	}
	return rec, nil
}

// isDocumentable filters out static functions, which are not part of any API.
func isDocumentable(member *node) bool {
	kind, _ := member.attr("kind")
	static, _ := member.attr("static")
	return !(kind == "function" && static == "yes")
}

func isDocumented(member *node) bool {
	for _, tag := range descriptionTags {
		for _, desc := range member.children(tag) {
			if len(desc.Nodes) > 0 {
				return true
			}
		}
	}
	return false
}

// identifier prefers <definition>, then <name>, then the id attribute.
// Element presence decides, even when its text is empty.
func identifier(member *node) string {
	if def := member.child("definition"); def != nil {
		return def.text()
	}
	if name := member.child("name"); name != nil {
		return name.text()
	}
	id, _ := member.attr("id")
	return id
}
