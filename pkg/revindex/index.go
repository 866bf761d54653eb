/*
Package revindex implements a generic reverse index: an ordered buffer of
text items plus a sorted key map from string fragments to the buffer
positions where each fragment was found.

Which fragments get keyed is decided by a Strategy. Two are provided:
Prefixes (every prefix of an item's text, for word completion) and Tokens
(every whitespace delimited word, for document search).

# Lifecycle

An Index is created with Build, grown cheaply with Append and rebuilt with
MergeDedupReindex:

	ri := revindex.Build(items, revindex.Prefixes)
	ri.Append(item)                  // strategy runs for the new position only
	ri = ri.MergeDedupReindex(more)  // sort, dedup, full rebuild

Append never sorts or deduplicates. The buffer stays in insertion order
until the next MergeDedupReindex, which produces a brand new buffer and
invalidates every position handed out before it.

# Concurrency

An Index has no internal locking. Any number of readers may share it as
long as no Append or MergeDedupReindex is running; callers that mutate
from several goroutines must wrap the index in their own sync.RWMutex.

# Contract violations

Positions are only created internally. Asking for a position outside the
buffer, or using an index after EjectBuffer, is a bug and panics.
*/
package revindex

import (
	"fmt"
	"iter"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// postings holds buffer positions in insertion order.
type postings []int

// Index maps string keys to the positions of the buffer items they were
// extracted from.
type Index[T Item[T]] struct {
	buffer   []T
	keys     *patricia.Trie
	keyCount int
	strategy Strategy
	ejected  bool
}

// Build takes ownership of items and indexes them with s, position by
// position. The caller must not modify items afterwards.
func Build[T Item[T]](items []T, s Strategy) *Index[T] {
	ri := &Index[T]{
		buffer:   items,
		keys:     patricia.NewTrie(),
		strategy: s,
	}
	for pos := range ri.buffer {
		ri.index(pos)
	}
	log.Debugf("Built reverse index: items=[%d] keys=[%d]", len(ri.buffer), ri.keyCount)
	return ri
}

// FromSeq collects seq into a buffer and builds an index over it.
func FromSeq[T Item[T]](seq iter.Seq[T], s Strategy) *Index[T] {
	var items []T
	for item := range seq {
		items = append(items, item)
	}
	return Build(items, s)
}

// index runs the strategy for a single buffer position.
func (ri *Index[T]) index(pos int) {
	for key := range ri.strategy.Keys(ri.buffer[pos].Text()) {
		ri.insert(key, pos)
	}
}

func (ri *Index[T]) insert(key string, pos int) {
	if key == "" {
		return
	}
	k := patricia.Prefix(key)
	if item := ri.keys.Get(k); item != nil {
		p := item.(*postings)
		*p = append(*p, pos)
		return
	}
	p := make(postings, 1, capacityFor(ri.strategy, key))
	p[0] = pos
	ri.keys.Insert(k, &p)
	ri.keyCount++
}

// Append adds item at the end of the buffer and indexes only that
// position. Existing positions and map entries are untouched. The buffer
// is neither sorted nor deduplicated; use MergeDedupReindex for that.
func (ri *Index[T]) Append(item T) int {
	ri.mustLive()
	ri.buffer = append(ri.buffer, item)
	pos := len(ri.buffer) - 1
	ri.index(pos)
	return pos
}

// Lookup returns the items filed under key, in the order they were
// inserted. An unknown key yields an empty slice.
func (ri *Index[T]) Lookup(key string) []T {
	ps := ri.postings(key)
	found := make([]T, 0, len(ps))
	for _, pos := range ps {
		found = append(found, ri.At(pos))
	}
	return found
}

// Positions returns a copy of the raw position list for key.
func (ri *Index[T]) Positions(key string) []int {
	return slices.Clone(ri.postings(key))
}

func (ri *Index[T]) postings(key string) postings {
	ri.mustLive()
	if key == "" {
		return nil
	}
	item := ri.keys.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	return *item.(*postings)
}

// At returns the item at pos. It panics when pos is outside the buffer.
func (ri *Index[T]) At(pos int) T {
	ri.mustLive()
	ri.checkPos(pos)
	return ri.buffer[pos]
}

// Len is the number of items in the buffer.
func (ri *Index[T]) Len() int {
	ri.mustLive()
	return len(ri.buffer)
}

// Items returns a copy of the buffer in position order.
func (ri *Index[T]) Items() []T {
	ri.mustLive()
	return slices.Clone(ri.buffer)
}

// KeyCount is the number of distinct keys in the map.
func (ri *Index[T]) KeyCount() int {
	ri.mustLive()
	return ri.keyCount
}

// Strategy returns the strategy the index was built with.
func (ri *Index[T]) Strategy() Strategy {
	return ri.strategy
}

// Keys returns every key in lexicographic order.
func (ri *Index[T]) Keys() []string {
	return ri.KeysWithPrefix("")
}

// KeysWithPrefix returns, in lexicographic order, the keys starting with
// prefix.
func (ri *Index[T]) KeysWithPrefix(prefix string) []string {
	ri.mustLive()
	keys := make([]string, 0)
	visit := func(p patricia.Prefix, item patricia.Item) error {
		if item != nil {
			keys = append(keys, string(p))
		}
		return nil
	}
	var err error
	if prefix == "" {
		err = ri.keys.Visit(visit)
	} else {
		err = ri.keys.VisitSubtree(patricia.Prefix(prefix), visit)
	}
	if err != nil {
		log.Errorf("Error visiting key map: %v", err)
	}
	slices.Sort(keys)
	return keys
}

// EjectBuffer hands the buffer back to the caller. The index must not be
// used afterwards.
func (ri *Index[T]) EjectBuffer() []T {
	ri.mustLive()
	buffer := ri.buffer
	ri.buffer = nil
	ri.keys = nil
	ri.keyCount = 0
	ri.ejected = true
	return buffer
}

// MergeDedupReindex ejects the buffer, appends more, sorts everything by
// the items' natural order, drops adjacent duplicates and builds a new
// index with the same strategy. The receiver is consumed; positions and
// navigators taken from it keep referring to the old buffer only.
func (ri *Index[T]) MergeDedupReindex(more []T) *Index[T] {
	s := ri.strategy
	old := ri.EjectBuffer()
	// Concat allocates, so the old buffer shared with navigators is never reordered.
	merged := slices.Concat(old, more)
	slices.SortFunc(merged, func(a, b T) int { return a.Compare(b) })
	merged = slices.CompactFunc(merged, func(a, b T) bool { return a.Compare(b) == 0 })
	log.Debugf("Reindexing: old=[%d] added=[%d] kept=[%d]", len(old), len(more), len(merged))
	return Build(merged, s)
}

func (ri *Index[T]) checkPos(pos int) {
	if pos < 0 || pos >= len(ri.buffer) {
		panic(fmt.Sprintf("revindex: position %d out of range [0,%d)", pos, len(ri.buffer)))
	}
}

func (ri *Index[T]) mustLive() {
	if ri.ejected {
		panic("revindex: use of index after EjectBuffer")
	}
}
