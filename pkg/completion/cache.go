package completion

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache remembers recent Complete results per prefix and evicts the
// least recently used one when full. It has its own lock so it can be
// filled while the word index is only read-locked.
type HotCache struct {
	entries     *patricia.Trie
	count       int
	maxEntries  int
	accessCount int64
	hits        int64
	misses      int64
	mu          sync.Mutex
}

type cacheEntry struct {
	limit       int
	suggestions []Suggestion
	lastUsed    int64
}

// NewHotCache creates an empty cache holding at most maxEntries prefixes.
func NewHotCache(maxEntries int) *HotCache {
	return &HotCache{
		entries:    patricia.NewTrie(),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the cached suggestions for prefix and limit.
func (hc *HotCache) Get(prefix string, limit int) ([]Suggestion, bool) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	item := hc.entries.Get(patricia.Prefix(prefix))
	if item == nil || item.(*cacheEntry).limit != limit {
		hc.misses++
		return nil, false
	}
	entry := item.(*cacheEntry)
	entry.lastUsed = hc.nextAccessTime()
	hc.hits++
	return slices.Clone(entry.suggestions), true
}

// Put stores suggestions for prefix and limit, replacing older results.
func (hc *HotCache) Put(prefix string, limit int, suggestions []Suggestion) {
	if prefix == "" {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	entry := &cacheEntry{
		limit:       limit,
		suggestions: slices.Clone(suggestions),
		lastUsed:    hc.nextAccessTime(),
	}
	key := patricia.Prefix(prefix)
	if hc.entries.Get(key) != nil {
		hc.entries.Set(key, entry)
		return
	}
	if hc.count >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.entries.Insert(key, entry)
	hc.count++
}

// Invalidate drops every cached prefix that word could now complete,
// comparing case-insensitively.
func (hc *HotCache) Invalidate(word string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	lowerWord := strings.ToLower(word)
	var stale []string
	hc.entries.Visit(func(p patricia.Prefix, item patricia.Item) error {
		if item != nil && strings.HasPrefix(lowerWord, strings.ToLower(string(p))) {
			stale = append(stale, string(p))
		}
		return nil
	})
	for _, key := range stale {
		if hc.entries.Delete(patricia.Prefix(key)) {
			hc.count--
		}
	}
	if len(stale) > 0 {
		log.Debugf("Invalidated %d cached prefixes for '%s'", len(stale), word)
	}
}

// Purge empties the cache.
func (hc *HotCache) Purge() {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.entries = patricia.NewTrie()
	hc.count = 0
}

// Stats reports cache occupancy and hit counters.
func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return map[string]int{
		"hotCacheEntries": hc.count,
		"maxHotEntries":   hc.maxEntries,
		"hotCacheHits":    int(hc.hits),
		"hotCacheMisses":  int(hc.misses),
	}
}

func (hc *HotCache) nextAccessTime() int64 {
	hc.accessCount++
	return hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestKey patricia.Prefix
	var oldestTime int64 = math.MaxInt64

	hc.entries.Visit(func(p patricia.Prefix, item patricia.Item) error {
		if e, ok := item.(*cacheEntry); ok && e.lastUsed < oldestTime {
			oldestTime = e.lastUsed
			oldestKey = slices.Clone(p)
		}
		return nil
	})
	if oldestKey != nil && hc.entries.Delete(oldestKey) {
		hc.count--
		log.Debugf("Evicted prefix '%s' from hot cache", oldestKey)
	}
}
