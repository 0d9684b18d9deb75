package ports

import (
	"godice/domain/core"
	"godice/domain/pool"
)

// ResultCache memoizes generator-intrinsic count distributions and whole
// evaluation results. Lookups are by structural-equality keys, never
// object identity, and a cache must be transparent: results are identical
// with or without it regardless of hit/miss pattern.
type ResultCache interface {
	// GetPops / PutPops memoize a generator's local count distribution
	// for a (structural description, residual state, outcome, order) key.
	GetPops(key core.PopKey) ([]pool.Pop, bool)
	PutPops(key core.PopKey, pops []pool.Pop)

	// GetResult / PutResult memoize a whole evaluation result. Values are
	// opaque to the cache; the engine asserts the concrete distribution
	// type on read and treats a mismatch as a miss.
	GetResult(key core.ResultKey) (any, bool)
	PutResult(key core.ResultKey, value any)

	// Clear drops every entry.
	Clear()

	// Stats reports hit/miss accounting.
	Stats() CacheStats
}

// CacheStats is a point-in-time view of cache accounting.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}
