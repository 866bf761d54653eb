package revindex

import (
	"fmt"
	"iter"
)

// Navigator is bound to one buffer position and walks to the items
// around it without searching again. It holds a read-only view of the
// buffer it came from: items appended later are not visible to it, and
// after MergeDedupReindex it keeps reading the old buffer.
type Navigator[T any] struct {
	pos int
	buf []T
}

// Navigator returns a handle bound to pos. It panics when pos is outside
// the buffer.
func (ri *Index[T]) Navigator(pos int) Navigator[T] {
	ri.mustLive()
	ri.checkPos(pos)
	n := len(ri.buffer)
	return Navigator[T]{pos: pos, buf: ri.buffer[:n:n]}
}

// Position is the buffer position the navigator is bound to.
func (n Navigator[T]) Position() int { return n.pos }

// Current returns the item at the bound position.
func (n Navigator[T]) Current() T {
	if n.pos < 0 || n.pos >= len(n.buf) {
		panic(fmt.Sprintf("revindex: navigator position %d out of range [0,%d)", n.pos, len(n.buf)))
	}
	return n.buf[n.pos]
}

// Forwards yields the items after the bound position, nearest first,
// and stops at the end of the buffer. Every call starts a fresh walk.
func (n Navigator[T]) Forwards() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := n.pos + 1; i < len(n.buf); i++ {
			if !yield(n.buf[i]) {
				return
			}
		}
	}
}

// Backwards yields the items before the bound position, nearest first,
// and stops at position 0.
func (n Navigator[T]) Backwards() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := n.pos - 1; i >= 0 && i < len(n.buf); i-- {
			if !yield(n.buf[i]) {
				return
			}
		}
	}
}

// Window returns up to before items preceding the bound position, the
// current item and up to after items following it, in buffer order.
// at is the index of the current item inside the returned slice.
func (n Navigator[T]) Window(before, after int) (items []T, at int) {
	lo := max(n.pos-max(before, 0), 0)
	hi := min(n.pos+max(after, 0)+1, len(n.buf))
	items = make([]T, hi-lo)
	copy(items, n.buf[lo:hi])
	return items, n.pos - lo
}
