package schema

import "errors"

// Sentinel errors shared across packages. Callers wrap them with context
// and test with errors.Is.
var (
	// ErrMissingIndex means the input directory has no index.xml.
	ErrMissingIndex = errors.New("missing index.xml")

	// ErrMalformedInput means an XML document could not be parsed.
	ErrMalformedInput = errors.New("malformed XML input")

	// ErrEmptyCorpus means no symbols survived extraction and exclusion.
	ErrEmptyCorpus = errors.New("no documentable symbols found")
)
