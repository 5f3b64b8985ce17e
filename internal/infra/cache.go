package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Cache size limits to prevent unbounded memory growth
const (
	DefaultMaxCacheEntries = 1000             // Maximum number of cached renders
	DefaultCacheTTL        = 10 * time.Minute // Lifetime of a cached render
	DefaultCacheCleanup    = 5 * time.Minute  // How often to sweep expired entries
)

// entry holds one cached value with expiration and LRU tracking
type entry[V any] struct {
	value     V
	expiresAt time.Time
	accessed  atomic.Int64 // unix nanos of the last hit
}

// Cache is a TTL cache with approximate LRU eviction, keyed by content digest.
// It is safe for concurrent use.
type Cache[V any] struct {
	entries    sync.Map // string -> *entry[V]
	count      atomic.Int64
	maxEntries int64
	ttl        time.Duration
	evictMu    sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once
}

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewCache creates a cache holding at most maxEntries values for ttl each.
// Non-positive arguments fall back to the defaults.
func NewCache[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache[V]{
		maxEntries: int64(maxEntries),
		ttl:        ttl,
		stopCh:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Key derives a cache key from an operation name and its inputs.
func Key(op string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.entries.Load(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	e := v.(*entry[V])
	now := time.Now()
	if now.After(e.expiresAt) {
		if c.entries.CompareAndDelete(key, e) {
			c.count.Add(-1)
		}
		c.misses.Add(1)
		return zero, false
	}
	e.accessed.Store(now.UnixNano())
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	now := time.Now()
	e := &entry[V]{value: value, expiresAt: now.Add(c.ttl)}
	e.accessed.Store(now.UnixNano())

	if _, existed := c.entries.Swap(key, e); existed {
		return
	}
	if n := c.count.Add(1); n > c.maxEntries {
		// Evict 10% extra so a full cache does not evict on every insert
		go c.evictLRU(int(n - c.maxEntries + c.maxEntries/10))
	}
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	if _, existed := c.entries.LoadAndDelete(key); existed {
		c.count.Add(-1)
	}
}

// Size returns the current number of entries.
func (c *Cache[V]) Size() int64 { return c.count.Load() }

// Stats returns entry count and hit/miss totals.
func (c *Cache[V]) Stats() CacheStats {
	return CacheStats{
		Entries: c.count.Load(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Close stops the background cleanup goroutine.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(DefaultCacheCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries, then evicts if still over the limit.
func (c *Cache[V]) cleanup() {
	now := time.Now()
	c.entries.Range(func(key, value any) bool {
		if e := value.(*entry[V]); now.After(e.expiresAt) {
			if c.entries.CompareAndDelete(key, e) {
				c.count.Add(-1)
			}
		}
		return true
	})

	if n := c.count.Load(); n > c.maxEntries {
		c.evictLRU(int(n - c.maxEntries + c.maxEntries/10))
	}
}

// evictLRU removes the count least recently used entries.
func (c *Cache[V]) evictLRU(count int) {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	type candidate struct {
		key      string
		e        *entry[V]
		accessed int64
	}
	var all []candidate
	c.entries.Range(func(key, value any) bool {
		e := value.(*entry[V])
		all = append(all, candidate{key: key.(string), e: e, accessed: e.accessed.Load()})
		return true
	})

	sort.Slice(all, func(i, j int) bool { return all[i].accessed < all[j].accessed })

	for i := 0; i < count && i < len(all); i++ {
		if c.entries.CompareAndDelete(all[i].key, all[i].e) {
			c.count.Add(-1)
		}
	}
}
