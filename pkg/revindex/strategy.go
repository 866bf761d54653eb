package revindex

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Strategy decides which keys an item is filed under. Keys is called
// once per buffer position with that item's text; every key it yields
// gets the position appended to its list. A strategy only sees the text,
// so it cannot touch the buffer or any other position.
type Strategy interface {
	Keys(text string) iter.Seq[string]
}

// CapacityHinter is an optional Strategy extension that sizes the
// position list allocated for a new key. It only affects allocations.
type CapacityHinter interface {
	Capacity(key string) int
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(text string) iter.Seq[string]

// Keys calls f(text).
func (f StrategyFunc) Keys(text string) iter.Seq[string] {
	return f(text)
}

const defaultCapacity = 4

func capacityFor(s Strategy, key string) int {
	if h, ok := s.(CapacityHinter); ok {
		if c := h.Capacity(key); c > 0 {
			return c
		}
	}
	return defaultCapacity
}

var (
	// Prefixes files an item under every prefix of its text, from the
	// first rune up to the whole string. Prefixes are cut on rune
	// boundaries so multi-byte text never yields broken keys.
	Prefixes Strategy = prefixStrategy{}

	// Tokens files an item under each whitespace delimited word of its
	// text. A word that occurs twice is yielded twice, so the position
	// lands in that word's list twice.
	Tokens Strategy = tokenStrategy{}
)

type prefixStrategy struct{}

func (prefixStrategy) Keys(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range text {
			if i == 0 {
				continue
			}
			if !yield(text[:i]) {
				return
			}
		}
		if text != "" {
			yield(text)
		}
	}
}

// Single rune prefixes are shared by a large part of any vocabulary.
func (prefixStrategy) Capacity(key string) int {
	if utf8.RuneCountInString(key) == 1 {
		return 20
	}
	return 2
}

func (prefixStrategy) String() string { return "prefix" }

type tokenStrategy struct{}

func (tokenStrategy) Keys(text string) iter.Seq[string] {
	return strings.FieldsSeq(text)
}

func (tokenStrategy) Capacity(key string) int {
	if len(key) == 1 {
		return 20
	}
	return 7
}

func (tokenStrategy) String() string { return "token" }
