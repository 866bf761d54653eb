// Package document finds documents by the words they contain, ranking
// them by how many distinct query words they match.
package document

import (
	"cmp"
	"strings"
)

// Document is a named piece of text. Only Content is indexed.
type Document struct {
	Name    string `msgpack:"name" json:"name"`
	Content string `msgpack:"content" json:"content"`
}

// Text returns the indexed content.
func (d Document) Text() string { return d.Content }

// Compare orders documents by name, then content.
func (d Document) Compare(other Document) int {
	return cmp.Or(
		strings.Compare(d.Name, other.Name),
		strings.Compare(d.Content, other.Content),
	)
}
