package utils

import (
	"strings"
)

// SuggestionFilter drops repeated words, ignoring case. The input the
// suggestions were made for counts as already seen.
// Not safe for concurrent use; create one per request.
type SuggestionFilter struct {
	seenWords map[string]struct{}
}

// NewSuggestionFilter creates a filter that also excludes input itself.
func NewSuggestionFilter(input string) *SuggestionFilter {
	f := &SuggestionFilter{seenWords: make(map[string]struct{})}
	if input != "" {
		f.seenWords[strings.ToLower(input)] = struct{}{}
	}
	return f
}

// ShouldInclude reports whether word is new, and remembers it.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if _, seen := f.seenWords[lowerWord]; seen {
		return false
	}
	f.seenWords[lowerWord] = struct{}{}
	return true
}
