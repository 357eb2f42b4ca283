package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// fingerprintLen bounds how much of the input text contributes to the
// cache key. Descriptions rarely diverge only after this point, and a
// bounded prefix keeps hashing cost flat.
const fingerprintLen = 2000

// Fingerprint derives the cache key from the first fingerprintLen
// characters of text.
func Fingerprint(text string) string {
	if len(text) > fingerprintLen {
		text = text[:fingerprintLen]
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Cache stores extraction results keyed by content fingerprint. When
// full it evicts a batch of oldest-inserted entries; eviction and
// insert happen as one atomic step so size bookkeeping stays
// consistent under concurrent extraction calls.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]map[string][]string
	order    []string // insertion order, oldest first
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]map[string][]string, capacity),
	}
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key string) (map[string][]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key, evicting the oldest tenth of the cache
// first when at capacity. A repeated key keeps its original insertion
// position.
func (c *Cache) Put(key string, value map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}

	if len(c.entries) >= c.capacity {
		batch := c.capacity / 10
		if batch < 1 {
			batch = 1
		}
		for _, old := range c.order[:batch] {
			delete(c.entries, old)
		}
		c.order = c.order[batch:]
	}

	c.entries[key] = value
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
