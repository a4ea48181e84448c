// Package cache provides an in-memory TTL cache for search results with
// request collapsing, so identical concurrent searches run the planner once.
// Caching is safe because the catalog is immutable after load and the search
// is deterministic.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner"
)

// Cache caches planner results by request key with a TTL.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	ttl      time.Duration
	inflight map[string]*inflightSearch
	done     chan struct{}
}

// A nil result with a nil error is a cached negative outcome (no match);
// those are worth caching as much as hits are.
type cacheEntry struct {
	result    *planner.Result
	expiresAt time.Time
}

type inflightSearch struct {
	done   chan struct{}
	result *planner.Result
	err    error
}

// New creates a new Cache with the specified TTL.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries:  make(map[string]*cacheEntry),
		ttl:      ttl,
		inflight: make(map[string]*inflightSearch),
		done:     make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.done)
}

// Key derives a cache key from a search request. Origin and destination are
// folded to lower case to match the planner's case-insensitive matching; the
// budget is formatted losslessly so near-equal budgets never share an entry.
func (c *Cache) Key(req planner.Request) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s",
		strings.ToLower(req.Origin),
		strings.ToLower(req.Destination),
		req.StartDate.Format("2006-01-02"),
		req.Days,
		strconv.FormatFloat(req.Budget, 'g', -1, 64),
	)
}

// GetOrSearch retrieves a cached result or executes the search function.
// Concurrent calls for the same key are collapsed into one search.
// Returns the result and whether it came from the cache.
func (c *Cache) GetOrSearch(ctx context.Context, key string, search func() (*planner.Result, error)) (*planner.Result, bool, error) {
	c.mu.Lock()

	if entry, ok := c.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.result, true, nil
	}

	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.result, false, inflight.err
		case <-ctx.Done():
			return nil, false, context.Cause(ctx)
		}
	}

	inflight := &inflightSearch{
		done: make(chan struct{}),
	}
	c.inflight[key] = inflight
	c.mu.Unlock()

	// Run the search outside the lock.
	result, err := search()

	c.mu.Lock()
	inflight.result = result
	inflight.err = err
	if err == nil {
		c.entries[key] = &cacheEntry{
			result:    result,
			expiresAt: time.Now().Add(c.ttl),
		}
	}
	delete(c.inflight, key)
	c.mu.Unlock()

	close(inflight.done)

	return result, false, err
}

// Invalidate removes a specific key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries, e.g. after a catalog reload.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// cleanup periodically removes expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
