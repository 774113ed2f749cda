package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats reports cache occupancy
type Stats struct {
	Items     int   `json:"items"`
	Bytes     int64 `json:"bytes"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type entry struct {
	key       string
	data      []byte
	storedAt  time.Time
	ttl       time.Duration
	element   *list.Element
}

// Cache is a mutex-guarded in-process cache with TTL expiry and LRU
// eviction under item-count or byte pressure. Eviction runs inline
// with Put, at most once per sweep interval.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	order         *list.List // front = most recently used
	maxItems      int
	maxBytes      int64
	bytes         int64
	defaultTTL    time.Duration
	sweepInterval time.Duration
	lastSweep     time.Time
	stats         Stats
}

// New creates a cache. Zero maxItems or maxBytes means unbounded on
// that axis; zero defaultTTL means entries never expire unless a TTL
// is given per Put.
func New(maxItems int, maxBytes int64, defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:       make(map[string]*entry),
		order:         list.New(),
		maxItems:      maxItems,
		maxBytes:      maxBytes,
		defaultTTL:    defaultTTL,
		sweepInterval: 30 * time.Second,
	}
}

// Get returns the cached value for key, or nil if absent or expired
func (c *Cache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil
	}
	if e.expired(time.Now()) {
		c.remove(e)
		c.stats.Misses++
		return nil
	}

	c.order.MoveToFront(e.element)
	c.stats.Hits++

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out
}

// Put stores value under key with the cache's default TTL
func (c *Cache) Put(key string, value []byte) {
	c.PutTTL(key, value, c.defaultTTL)
}

// PutTTL stores value under key with an explicit TTL
func (c *Cache) PutTTL(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := make([]byte, len(value))
	copy(data, value)

	now := time.Now()
	if old, ok := c.entries[key]; ok {
		c.remove(old)
	}

	e := &entry{key: key, data: data, storedAt: now, ttl: ttl}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
	c.bytes += int64(len(data))

	c.evictLocked(now)
}

// Delete removes key if present
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.remove(e)
	}
}

// Clear removes everything
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order.Init()
	c.bytes = 0
}

// Len returns the number of live entries, expired ones included
// until the next sweep touches them.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of cache counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Items = len(c.entries)
	s.Bytes = c.bytes
	return s
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.storedAt) > e.ttl
}

// evictLocked enforces limits. The expiry sweep is throttled to once
// per sweepInterval; LRU pressure eviction always runs so a Put can
// never leave the cache over its limits.
func (c *Cache) evictLocked(now time.Time) {
	if now.Sub(c.lastSweep) >= c.sweepInterval {
		c.lastSweep = now
		for _, e := range c.entries {
			if e.expired(now) {
				c.remove(e)
				c.stats.Evictions++
			}
		}
	}

	for (c.maxItems > 0 && len(c.entries) > c.maxItems) ||
		(c.maxBytes > 0 && c.bytes > c.maxBytes) {
		back := c.order.Back()
		if back == nil {
			return
		}
		c.remove(back.Value.(*entry))
		c.stats.Evictions++
	}
}

func (c *Cache) remove(e *entry) {
	delete(c.entries, e.key)
	c.order.Remove(e.element)
	c.bytes -= int64(len(e.data))
}
