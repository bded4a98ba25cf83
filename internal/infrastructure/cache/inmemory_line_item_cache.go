package cache

import (
	"context"
	"sync"
	"time"

	"github.com/salesdash/backend/internal/domain/sales"
)

// entry is a cached upstream response with its expiry
type entry struct {
	items     []sales.LineItem
	expiresAt time.Time
}

// InMemoryLineItemCache implements LineItemCache using an in-memory map.
// It is suitable for single-instance deployments and tests.
type InMemoryLineItemCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLineItemCache creates the cache and starts a background
// goroutine that evicts expired entries.
func NewInMemoryLineItemCache(ttl time.Duration) *InMemoryLineItemCache {
	c := &InMemoryLineItemCache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached items for a venue and date
func (c *InMemoryLineItemCache) Get(_ context.Context, venueID int, date string) ([]sales.LineItem, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[cacheKey(venueID, date)]
	if !exists || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return copyItems(e.items), true, nil
}

// Set stores items for a venue and date
func (c *InMemoryLineItemCache) Set(_ context.Context, venueID int, date string, items []sales.LineItem, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(venueID, date)] = entry{
		items:     copyItems(items),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryLineItemCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryLineItemCache) cleanupLoop() {
	defer c.wg.Done()

	interval := c.ttl
	if interval <= 0 || interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryLineItemCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryLineItemCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ LineItemCache = (*InMemoryLineItemCache)(nil)
