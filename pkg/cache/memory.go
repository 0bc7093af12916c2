package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/questlog/questlog/core"
)

// InMemoryCache implements an in-memory snapshot cache with TTL expiry
// and a bounded size.
type InMemoryCache struct {
	records map[string]*record
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type record struct {
	value    any
	cachedAt time.Time
}

// New creates a new in-memory cache
func New(c core.CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = core.DefaultSnapshotTTL
	}
	if c.MaxSize == 0 {
		c.MaxSize = core.DefaultSnapshotMaxSize
	}

	return &InMemoryCache{
		records: make(map[string]*record),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get retrieves a value from cache. Expired entries are removed lazily.
func (c *InMemoryCache) Get(key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.records[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheMiss
	}

	if time.Since(rec.cachedAt) > c.ttl {
		delete(c.records, key)
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheMiss
	}

	atomic.AddInt64(&c.hits, 1)
	return rec.value, nil
}

// Set stores a value in cache
func (c *InMemoryCache) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if _, exists := c.records[key]; !exists && len(c.records) >= c.maxSize {
		for k := range c.records {
			delete(c.records, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.records[key] = &record{
		value:    value,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.records[key]; existed {
		delete(c.records, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]*record)
	return nil
}

// Len returns the number of cached values
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Stats returns cache statistics
func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
