package document

import (
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bastiangx/revindex/pkg/revindex"
	"github.com/charmbracelet/log"
)

// Hit is one ranked search result: the buffer position of a document
// and how many distinct query terms it contains.
type Hit struct {
	Position int
	Count    int
}

// Index files every document under each whitespace delimited word of its
// text. Reads may run concurrently; AddDocument and MergeDedupReindex
// need exclusive access.
type Index[T revindex.Item[T]] struct {
	ri *revindex.Index[T]
}

// New builds a document index over docs, keeping their order.
func New[T revindex.Item[T]](docs []T) *Index[T] {
	return &Index[T]{ri: revindex.Build(docs, revindex.Tokens)}
}

// AddDocument appends doc and indexes its words. It returns the new
// document's position. Nothing is re-sorted or deduplicated.
func (ix *Index[T]) AddDocument(doc T) int {
	return ix.ri.Append(doc)
}

// MergeDedupReindex merges docs in, sorts and deduplicates all documents
// and rebuilds the word map. Earlier positions and navigators no longer
// refer to this index.
func (ix *Index[T]) MergeDedupReindex(docs []T) {
	ix.ri = ix.ri.MergeDedupReindex(docs)
}

// Lookup returns the documents containing word. A document listing the
// word twice shows up twice.
func (ix *Index[T]) Lookup(word string) []T {
	return ix.ri.Lookup(word)
}

// Hits ranks documents against query. Each distinct query term adds at
// most one to a document's count, however often the term appears in it.
// Hits are ordered by count, highest first, then by position; at most
// limit are returned and documents matching no term never are.
func (ix *Index[T]) Hits(query string, limit int) []Hit {
	if limit <= 0 {
		return []Hit{}
	}

	counts := make(map[uint32]int)
	matched := roaring.New()
	seen := make(map[string]struct{})
	for term := range strings.FieldsSeq(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		positions := ix.ri.Positions(term)
		if len(positions) == 0 {
			continue
		}
		// collapses repeats of the term inside one document
		perTerm := roaring.New()
		for _, pos := range positions {
			perTerm.Add(uint32(pos))
		}
		perTerm.Iterate(func(pos uint32) bool {
			counts[pos]++
			return true
		})
		matched.Or(perTerm)
	}

	hits := make([]Hit, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		pos := it.Next()
		hits = append(hits, Hit{Position: int(pos), Count: counts[pos]})
	}
	// stable: equal counts keep ascending position order
	slices.SortStableFunc(hits, func(a, b Hit) int { return b.Count - a.Count })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	log.Debugf("Searched '%s': terms=[%d] matched=[%d] returned=[%d]", query, len(seen), matched.GetCardinality(), len(hits))
	return hits
}

// Search returns up to limit documents ranked as described on Hits.
func (ix *Index[T]) Search(query string, limit int) []T {
	hits := ix.Hits(query, limit)
	docs := make([]T, len(hits))
	for i, h := range hits {
		docs[i] = ix.ri.At(h.Position)
	}
	return docs
}

// SearchWithNavigators ranks like Search but returns navigators, so the
// caller can walk to the documents stored next to each match.
func (ix *Index[T]) SearchWithNavigators(query string, limit int) []revindex.Navigator[T] {
	hits := ix.Hits(query, limit)
	navs := make([]revindex.Navigator[T], len(hits))
	for i, h := range hits {
		navs[i] = ix.ri.Navigator(h.Position)
	}
	return navs
}

// At returns the document at pos.
func (ix *Index[T]) At(pos int) T {
	return ix.ri.At(pos)
}

// Navigator returns a navigator bound to pos.
func (ix *Index[T]) Navigator(pos int) revindex.Navigator[T] {
	return ix.ri.Navigator(pos)
}

// Len is the number of documents.
func (ix *Index[T]) Len() int {
	return ix.ri.Len()
}

// Documents returns all documents in buffer order.
func (ix *Index[T]) Documents() []T {
	return ix.ri.Items()
}

// Stats returns document and vocabulary totals.
func (ix *Index[T]) Stats() map[string]int {
	return map[string]int{
		"totalDocuments": ix.ri.Len(),
		"totalTerms":     ix.ri.KeyCount(),
	}
}
