// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/cache.go
// Summary: Bounded LRU content cache mapping item id to materialized
// content. Shields repeated viewport reads from Source fetch cost.

package viewport

import "container/list"

// DefaultCacheSize is the content cache capacity used when the
// configured capacity is zero or negative.
const DefaultCacheSize = 1000

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns hits / (hits + misses), or 0 when the cache has
// never been consulted.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// cacheEntry is owned exclusively by the ContentCache and never
// escapes it.
type cacheEntry struct {
	key  string
	item Item
}

// ContentCache is a bounded-capacity LRU store keyed by item id.
// Get and Put are O(1): a hash map indexes into an intrusive
// recency list whose front is most-recent.
//
// The size bound is structural: the cache can never hold more than
// capacity entries, eviction happens inside Put.
//
// Not safe for concurrent use; the owning Viewport serializes access.
type ContentCache struct {
	capacity int
	ll       *list.List
	entries  map[string]*list.Element
	stats    CacheStats
}

// NewContentCache creates a cache holding at most capacity entries.
// Non-positive capacities fall back to DefaultCacheSize.
func NewContentCache(capacity int) *ContentCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ContentCache{
		capacity: capacity,
		ll:       list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Capacity returns the maximum number of entries the cache may hold.
func (c *ContentCache) Capacity() int {
	return c.capacity
}

// Len returns the current number of cached entries.
func (c *ContentCache) Len() int {
	return c.ll.Len()
}

// Get returns the cached item for id, bumping its recency on hit.
func (c *ContentCache) Get(id string) (Item, bool) {
	el, ok := c.entries[id]
	if !ok {
		c.stats.Misses++
		return Item{}, false
	}
	c.stats.Hits++
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).item, true
}

// Peek returns the cached item for id without touching recency or
// stats. Used for id/selectability lookups that should not perturb
// the eviction order.
func (c *ContentCache) Peek(id string) (Item, bool) {
	el, ok := c.entries[id]
	if !ok {
		return Item{}, false
	}
	return el.Value.(*cacheEntry).item, true
}

// Put inserts or replaces the entry for id, evicting the
// least-recently-used entry when the cache is full.
func (c *ContentCache) Put(id string, it Item) {
	if el, ok := c.entries[id]; ok {
		el.Value.(*cacheEntry).item = it
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: id, item: it})
	c.entries[id] = el
	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

// Invalidate removes the entry for id, if present.
func (c *ContentCache) Invalidate(id string) bool {
	el, ok := c.entries[id]
	if !ok {
		return false
	}
	c.ll.Remove(el)
	delete(c.entries, id)
	return true
}

// Clear empties the cache and resets its stats. Called on bulk
// content-source mutation (e.g. reloading a file).
func (c *ContentCache) Clear() {
	c.ll.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.stats = CacheStats{}
}

// Stats returns a snapshot of the hit/miss counters.
func (c *ContentCache) Stats() CacheStats {
	return c.stats
}

func (c *ContentCache) evictOldest() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	c.ll.Remove(back)
	delete(c.entries, back.Value.(*cacheEntry).key)
}
