package tensor

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// planCacheSize bounds each memoized plan family. The space of sector
// combinations encountered over a long simulation is unbounded, so the
// caches must evict.
const planCacheSize = 1024

// lruCache is a bounded, thread-safe LRU keyed by serialized structural
// signatures. Values are immutable plan structures, so concurrent
// readers may share them; the cache itself is append-only per key.
type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recent

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*lruEntry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		// Append-only per key: keep the first value, just refresh.
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry[K, V]).key)
		c.evictions.Add(1)
	}
}

// stats returns hit/miss/eviction counters.
func (c *lruCache[K, V]) stats() (hits, misses, evictions int64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

// The engine-owned plan caches, one per pure metadata computation.
var (
	matchCache = newLRUCache[string, matchIndices](planCacheSize)
	mergeCache = newLRUCache[string, *mergePlan](planCacheSize)
	traceCache = newLRUCache[string, *traceMetaPlan](planCacheSize)
	swapCache  = newLRUCache[string, []bool](planCacheSize)
	nconCache  = newLRUCache[string, *nconPlan](planCacheSize)
)
