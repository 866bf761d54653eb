package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotCacheGetPut(t *testing.T) {
	hc := NewHotCache(4)
	hc.Put("ap", 5, []Suggestion{{Word: "apple", Rank: 1}})

	got, ok := hc.Get("ap", 5)
	require.True(t, ok)
	assert.Equal(t, []Suggestion{{Word: "apple", Rank: 1}}, got)

	_, ok = hc.Get("ap", 6)
	assert.False(t, ok, "different limit must miss")
	_, ok = hc.Get("b", 5)
	assert.False(t, ok)

	stats := hc.Stats()
	assert.Equal(t, 1, stats["hotCacheHits"])
	assert.Equal(t, 2, stats["hotCacheMisses"])
}

func TestHotCacheReturnsCopies(t *testing.T) {
	hc := NewHotCache(4)
	hc.Put("ap", 5, []Suggestion{{Word: "apple", Rank: 1}})

	got, _ := hc.Get("ap", 5)
	got[0].Word = "mutated"

	again, _ := hc.Get("ap", 5)
	assert.Equal(t, "apple", again[0].Word)
}

func TestHotCacheEvictsLeastRecentlyUsed(t *testing.T) {
	hc := NewHotCache(2)
	hc.Put("a", 1, nil)
	hc.Put("b", 1, nil)
	_, _ = hc.Get("a", 1)

	hc.Put("c", 1, nil)

	_, okA := hc.Get("a", 1)
	_, okB := hc.Get("b", 1)
	_, okC := hc.Get("c", 1)
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.Equal(t, 2, hc.Stats()["hotCacheEntries"])
}

func TestHotCacheInvalidate(t *testing.T) {
	hc := NewHotCache(8)
	for _, p := range []string{"y", "Ye", "yee", "yo", "b"} {
		hc.Put(p, 3, nil)
	}

	hc.Invalidate("yeet")

	for _, p := range []string{"y", "Ye", "yee"} {
		_, ok := hc.Get(p, 3)
		assert.False(t, ok, p)
	}
	for _, p := range []string{"yo", "b"} {
		_, ok := hc.Get(p, 3)
		assert.True(t, ok, p)
	}
}

func TestWordIndexCacheFollowsMutations(t *testing.T) {
	w := NewWordIndex([]string{"app"})
	w.EnableCache(16)

	require.Len(t, w.Complete("ap", 5), 1)
	w.AddWord("apply")
	got := w.Complete("ap", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "apply", got[1].Word)

	w.MergeDedupReindex([]string{"apex"})
	got = w.Complete("ap", 5)
	require.Len(t, got, 3)
	assert.Equal(t, "apex", got[0].Word)

	stats := w.Stats()
	assert.Equal(t, 16, stats["maxHotEntries"])
	assert.Equal(t, 1, stats["hotCacheEntries"])
}
