// Package cache provides the in-memory response cache that
// pkg/server puts in front of its REST and GraphQL handlers, so
// repeated queries against an unchanged graph (e.g. a dashboard
// polling /api/v1/analysis/stats) don't re-walk pkg/analysis on every
// request. pkg/cache/manager.go holds the separate on-disk (bbolt)
// cache for transform output; it has no LRU or TTL eviction.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Stats is a snapshot of a Cache's hit/miss/eviction counters, surfaced
// by the server's /cache/stats endpoint.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Size       int
	MaxSize    int
	TotalBytes int64
	HitRate    float64
}

// entry is a cached response together with the bookkeeping needed for
// LRU eviction and TTL expiry. Unlike a plain map, keeping the list
// element alongside the value lets Get promote an entry to
// most-recently-used in the same lock without a second map lookup.
type entry struct {
	key       string
	value     interface{}
	size      int64
	hits      int64
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a fixed-capacity LRU cache whose entries also expire after
// a fixed TTL, whichever comes first.
type Cache struct {
	mu         sync.RWMutex
	index      map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration

	hits, misses, evictions int64
	totalBytes               int64
}

// NewCache creates a cache holding at most maxEntries responses, each
// expiring ttl after it was last written.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		index:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get returns the response stored under key, or (nil, false) if it is
// absent or has expired. A hit promotes key to the front of the LRU
// order and counts toward Stats.HitRate.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.index[key]
	if !found {
		c.misses++
		return nil, false
	}

	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.evict(elem)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	e.hits++
	c.hits++
	return e.value, true
}

// Set stores value under key with the given byte size, resetting its
// TTL. Inserting past maxEntries evicts the least recently used entry
// first.
func (c *Cache) Set(key string, value interface{}, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.index[key]; found {
		e := elem.Value.(*entry)
		c.totalBytes += size - e.size
		e.value = value
		e.size = size
		e.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxEntries {
		c.evictLRU()
	}

	now := time.Now()
	c.index[key] = c.order.PushFront(&entry{
		key:       key,
		value:     value,
		size:      size,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	})
	c.totalBytes += size
}

// Delete removes key from the cache, if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, found := c.index[key]; found {
		c.evict(elem)
	}
}

// Clear empties the cache without resetting the hit/miss counters, so
// Stats still reflects lifetime cache effectiveness across a Clear.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictions += int64(len(c.index))
	c.index = make(map[string]*list.Element)
	c.order = list.New()
	c.totalBytes = 0
}

// Stats reports the cache's current size and lifetime counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Size:       c.order.Len(),
		MaxSize:    c.maxEntries,
		TotalBytes: c.totalBytes,
		HitRate:    hitRate,
	}
}

// CleanExpired sweeps the cache for entries past their TTL and removes
// them, returning the count evicted. A cache fronting a long-idle
// server otherwise only reclaims stale entries lazily, on the next Get
// or Set that happens to collide with them.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.evict(elem)
	}
	c.evictions += int64(len(stale))
	return len(stale)
}

func (c *Cache) evictLRU() {
	if elem := c.order.Back(); elem != nil {
		c.evict(elem)
		c.evictions++
	}
}

// evict drops elem from both the index and the LRU list. Callers must
// hold c.mu.
func (c *Cache) evict(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(c.index, e.key)
	c.order.Remove(elem)
	c.totalBytes -= e.size
}

// GenerateKey hashes prefix and params together into a single cache
// key. pkg/server uses it to key a response on request method, URL,
// and query string without the key itself growing with the query.
func GenerateKey(prefix string, params ...string) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	for _, p := range params {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
