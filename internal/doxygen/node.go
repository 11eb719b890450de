// Package doxygen reads the XML tree emitted by Doxygen's XML generator.
package doxygen

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/doxycov/schema"
)

// node is a generic XML element. Doxygen's compound schema is large and
// versioned, so it is decoded loosely and queried by name.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content []byte     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

// attr returns the value of the named attribute, if present.
func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child with the given name.
func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// children returns every direct child with the given name.
func (n *node) children(name string) []*node {
	var out []*node
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// text returns the character data held directly by the element, untrimmed.
func (n *node) text() string {
	return string(n.Content)
}

// descendants returns every element named name beneath n, in document order.
// n itself is never included.
func (n *node) descendants(name string) []*node {
	var out []*node
	stack := make([]*node, 0, len(n.Nodes))
	for i := len(n.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, &n.Nodes[i])
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.XMLName.Local == name {
			out = append(out, cur)
		}
		for i := len(cur.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, &cur.Nodes[i])
		}
	}
	return out
}

// decodeDocument parses a whole XML document into its root element.
// Anything other than comments, processing instructions or whitespace after
// the root element is rejected.
func decodeDocument(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformedInput, err)
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schema.ErrMalformedInput, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return nil, fmt.Errorf("%w: junk after document element", schema.ErrMalformedInput)
			}
		case xml.StartElement:
			return nil, fmt.Errorf("%w: junk after document element", schema.ErrMalformedInput)
		}
	}
	return &root, nil
}
