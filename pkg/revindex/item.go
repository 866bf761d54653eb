package revindex

import "strings"

// Item is anything the index can hold: it exposes a read-only text view
// for the strategy and a natural total order for MergeDedupReindex.
// Compare returns a negative number, zero or a positive number like
// strings.Compare.
type Item[T any] interface {
	Text() string
	Compare(other T) int
}

// String is the simplest Item: the text is the value itself.
type String string

// Text returns s unchanged.
func (s String) Text() string { return string(s) }

// Compare orders strings bytewise.
func (s String) Compare(other String) int {
	return strings.Compare(string(s), string(other))
}

// Strings converts plain strings into a buffer of String items.
func Strings(words []string) []String {
	items := make([]String, len(words))
	for i, w := range words {
		items[i] = String(w)
	}
	return items
}
