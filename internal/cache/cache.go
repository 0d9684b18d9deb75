// Package cache is the process-scoped memoization layer for the
// evaluation engine. It is explicitly owned and passed by reference, never
// a hidden global: callers create one, share it across evaluations, and
// clear it when they choose.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"godice/domain/core"
	"godice/domain/pool"
	"godice/ports"
)

// Cache memoizes generator count distributions and whole evaluation
// results under structural-equality keys. Safe for concurrent use by
// evaluations sharing it. Idempotence is a correctness requirement: every
// stored value is immutable once inserted.
type Cache struct {
	mu         sync.RWMutex
	pops       map[core.PopKey][]pool.Pop
	results    map[core.ResultKey]any
	hits       int64
	misses     int64
	maxEntries int

	flight singleflight.Group
}

var _ ports.ResultCache = (*Cache)(nil)

// New creates a cache holding at most maxEntries entries across both maps;
// maxEntries <= 0 means unbounded. When full, new entries are not stored
// (the cache never evicts, matching its transparent-memo contract).
func New(maxEntries int) *Cache {
	c := &Cache{maxEntries: maxEntries}
	c.init()
	return c
}

func (c *Cache) init() {
	c.pops = make(map[core.PopKey][]pool.Pop)
	c.results = make(map[core.ResultKey]any)
}

// GetPops returns a memoized local count distribution.
func (c *Cache) GetPops(key core.PopKey) ([]pool.Pop, bool) {
	c.mu.RLock()
	pops, ok := c.pops[key]
	c.mu.RUnlock()
	c.account(ok)
	return pops, ok
}

// PutPops stores a local count distribution. The slice is owned by the
// cache after the call.
func (c *Cache) PutPops(key core.PopKey, pops []pool.Pop) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full() {
		return
	}
	c.pops[key] = pops
}

// GetResult returns a memoized whole-evaluation result.
func (c *Cache) GetResult(key core.ResultKey) (any, bool) {
	c.mu.RLock()
	v, ok := c.results[key]
	c.mu.RUnlock()
	c.account(ok)
	return v, ok
}

// PutResult stores a whole-evaluation result.
func (c *Cache) PutResult(key core.ResultKey, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full() {
		return
	}
	c.results[key] = value
}

// DoResult returns the cached result for key or computes it exactly once,
// deduplicating concurrent callers with the same key.
func (c *Cache) DoResult(key core.ResultKey, compute func() (any, error)) (any, error) {
	if v, ok := c.GetResult(key); ok {
		return v, nil
	}
	v, err, _ := c.flight.Do(key.String(), func() (any, error) {
		if v, ok := c.GetResult(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.PutResult(key, v)
		return v, nil
	})
	return v, err
}

// Clear drops every entry. Accounting is reset as well.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	c.hits = 0
	c.misses = 0
}

// Stats reports hit/miss accounting and the current entry count.
func (c *Cache) Stats() ports.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ports.CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.pops) + len(c.results),
	}
}

func (c *Cache) full() bool {
	return c.maxEntries > 0 && len(c.pops)+len(c.results) >= c.maxEntries
}

func (c *Cache) account(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}
