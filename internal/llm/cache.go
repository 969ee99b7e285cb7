package llm

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// cacheEntry holds one search answer.
type cacheEntry struct {
	expiry time.Time
	items  []model.WasteInfo
}

// searchCache caches text search results. Image analysis is never cached
// since every frame differs.
type searchCache struct {
	clock   clockwork.Clock
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newSearchCache creates a new cache with the specified TTL.
func newSearchCache(ttl time.Duration, clock clockwork.Clock) *searchCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	cache := &searchCache{
		clock:   clock,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// searchKey normalizes a query so "Battery " and "battery" share an entry.
func searchKey(query string, opts Options) string {
	mode := "basic"
	if opts.ExpertMode {
		mode = "expert"
	}
	return string(opts.Language) + "|" + mode + "|" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// get retrieves a result if it exists and hasn't expired.
func (c *searchCache) get(key string) ([]model.WasteInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.clock.Now().After(entry.expiry) {
		return nil, false
	}

	out := make([]model.WasteInfo, len(entry.items))
	copy(out, entry.items)
	return out, true
}

// set stores a result.
func (c *searchCache) set(key string, items []model.WasteInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]model.WasteInfo, len(items))
	copy(stored, items)
	c.entries[key] = cacheEntry{
		items:  stored,
		expiry: c.clock.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *searchCache) cleanup() {
	ticker := c.clock.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.Chan():
			c.evictExpired()
		}
	}
}

func (c *searchCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// clear removes all entries from the cache.
func (c *searchCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// size returns the number of entries in the cache.
func (c *searchCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *searchCache) Close() {
	close(c.stopCh)
}
