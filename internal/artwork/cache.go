package artwork

import (
	"container/list"
	"sync"
	"time"
)

// Cache default bounds. Image keys are session-scoped and artwork for a key
// never changes within a session, so a long TTL is safe; the TTL exists to
// bound staleness across Core library edits, not correctness.
const (
	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

// Cache is a capacity-bounded, time-limited key→data-URL cache with
// least-recently-used eviction.
//
// Eviction is twofold:
//   - Capacity: inserting a new key at capacity evicts the entry least
//     recently touched by Get or Set.
//   - TTL: Get and Has treat an entry older than the TTL as absent and
//     delete it as a side effect of the lookup. There is no background
//     sweep; expiry is lazy.
//
// A Get hit and a Set on an existing key both refresh the entry to
// most-recently-used with a fresh timestamp.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Lookups take the write lock
//     because Get reorders the LRU list and may expire entries.
type Cache struct {
	capacity int
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	// now is replaceable in tests to exercise TTL expiry.
	now func() time.Time
}

// entry is the value stored in the LRU list.
type entry struct {
	key       string
	value     string
	timestamp time.Time
}

// NewCache creates a Cache with the given capacity and TTL.
// Non-positive values fall back to the defaults.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key and whether it was present.
// A hit refreshes the entry to most-recently-used with a fresh timestamp.
// An expired entry is deleted and reported as absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	ent := elem.Value.(*entry)
	if c.expired(ent) {
		c.remove(elem)
		return "", false
	}

	ent.timestamp = c.now()
	c.order.MoveToFront(elem)
	return ent.value, true
}

// Has reports whether key is present and unexpired.
// Unlike Get it does not refresh LRU position, but it shares Get's lazy
// expiry side effect.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}

	if c.expired(elem.Value.(*entry)) {
		c.remove(elem)
		return false
	}

	return true
}

// Set stores value under key. An existing key is refreshed to
// most-recently-used with a new timestamp. A new key at capacity evicts the
// least-recently-used entry first.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.timestamp = c.now()
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	elem := c.order.PushFront(&entry{
		key:       key,
		value:     value,
		timestamp: c.now(),
	})
	c.entries[key] = elem
}

// Clear removes all entries. Called on pairing loss: image keys are scoped
// to a Core session and are meaningless after unpairing.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Size returns the number of resident entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// expired reports whether ent's age exceeds the TTL.
func (c *Cache) expired(ent *entry) bool {
	return c.now().Sub(ent.timestamp) > c.ttl
}

// remove deletes an element from both the list and the index.
// Caller must hold the lock.
func (c *Cache) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*entry).key)
}
