package completion

// Completer is the part of WordIndex the CLI and the server talk to.
type Completer interface {
	// Complete returns ranked suggestions for a prefix, at most limit of them
	Complete(prefix string, limit int) []Suggestion

	// GetCompletions returns every word carrying the exact prefix
	GetCompletions(prefix string) []string

	// AddWord appends a word without rebuilding
	AddWord(word string)

	// MergeDedupReindex merges, sorts, deduplicates and rebuilds
	MergeDedupReindex(words []string)

	// Stats returns statistics about the loaded vocabulary
	Stats() map[string]int
}

var _ Completer = (*WordIndex)(nil)
