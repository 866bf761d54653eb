// Package completion provides prefix word completion on top of a
// revindex built with the prefix strategy.
package completion

import (
	"strings"

	"github.com/bastiangx/revindex/internal/utils"
	"github.com/bastiangx/revindex/pkg/revindex"
	"github.com/charmbracelet/log"
)

// Suggestion represents a word completion suggestion with its rank
type Suggestion struct {
	Word string
	Rank int
	// WasFolded is set when the prefix only matched after lower-casing.
	WasFolded bool `json:",omitempty"`
}

// WordIndex maps every prefix of every word to the words carrying it.
// Reads may run concurrently; AddWord and MergeDedupReindex need
// exclusive access.
type WordIndex struct {
	ri    *revindex.Index[revindex.String]
	cache *HotCache
}

// NewWordIndex builds a word index over words, keeping their order.
// Duplicates are kept until the next MergeDedupReindex.
func NewWordIndex(words []string) *WordIndex {
	return &WordIndex{
		ri: revindex.Build(revindex.Strings(words), revindex.Prefixes),
	}
}

// EnableCache keeps up to maxEntries Complete results around.
func (w *WordIndex) EnableCache(maxEntries int) {
	if maxEntries <= 0 {
		w.cache = nil
		return
	}
	w.cache = NewHotCache(maxEntries)
}

// GetCompletions returns every word starting with prefix, in the order
// the words were added. Matching is exact and case sensitive.
func (w *WordIndex) GetCompletions(prefix string) []string {
	return toStrings(w.ri.Lookup(prefix))
}

// AddWord appends word without re-sorting or deduplicating.
func (w *WordIndex) AddWord(word string) {
	w.ri.Append(revindex.String(word))
	if w.cache != nil {
		w.cache.Invalidate(word)
	}
}

// MergeDedupReindex merges words into the index, sorts and deduplicates
// the whole vocabulary and rebuilds the prefix map.
func (w *WordIndex) MergeDedupReindex(words []string) {
	w.ri = w.ri.MergeDedupReindex(revindex.Strings(words))
	if w.cache != nil {
		w.cache.Purge()
	}
}

// Complete returns up to limit suggestions for prefix (limit <= 0 means
// no limit). The prefix itself and case-insensitive repeats are left
// out. A prefix with capitals that matches nothing is retried in lower
// case and the caller's capitals are put back on the results.
func (w *WordIndex) Complete(prefix string, limit int) []Suggestion {
	if w.cache != nil {
		if cached, ok := w.cache.Get(prefix, limit); ok {
			return cached
		}
	}

	matches := w.ri.Lookup(prefix)
	var capitals []bool
	if len(matches) == 0 {
		if lower := strings.ToLower(prefix); lower != prefix {
			matches = w.ri.Lookup(lower)
			capitals = utils.CapitalPositions(prefix)
		}
	}

	filter := utils.NewSuggestionFilter(prefix)
	suggestions := make([]Suggestion, 0, min(len(matches), max(limit, 0)))
	for _, m := range matches {
		word := string(m)
		if !filter.ShouldInclude(word) {
			continue
		}
		s := Suggestion{Word: word, Rank: len(suggestions) + 1}
		if capitals != nil {
			s.Word = utils.ApplyCapitalization(word, capitals)
			s.WasFolded = true
		}
		suggestions = append(suggestions, s)
		if limit > 0 && len(suggestions) == limit {
			break
		}
	}
	log.Debugf("Completed '%s': matches=[%d] returned=[%d]", prefix, len(matches), len(suggestions))

	if w.cache != nil {
		w.cache.Put(prefix, limit, suggestions)
	}
	return suggestions
}

// Words returns the vocabulary in buffer order.
func (w *WordIndex) Words() []string {
	return toStrings(w.ri.Items())
}

// KeysWithPrefix lists the indexed prefixes that start with prefix.
func (w *WordIndex) KeysWithPrefix(prefix string) []string {
	return w.ri.KeysWithPrefix(prefix)
}

// Stats returns statistics about the loaded vocabulary
func (w *WordIndex) Stats() map[string]int {
	stats := map[string]int{
		"totalWords": w.ri.Len(),
		"totalKeys":  w.ri.KeyCount(),
	}
	if w.cache != nil {
		for k, v := range w.cache.Stats() {
			stats[k] = v
		}
	}
	return stats
}

func toStrings(items []revindex.String) []string {
	words := make([]string, len(items))
	for i, item := range items {
		words[i] = string(item)
	}
	return words
}
