package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesdash/backend/internal/domain/sales"
)

// RedisLineItemCache implements LineItemCache using Redis so that several
// dashboard instances share upstream responses.
type RedisLineItemCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisLineItemCache creates a cache on an existing client
func NewRedisLineItemCache(client redis.UniversalClient, ttl time.Duration) *RedisLineItemCache {
	return &RedisLineItemCache{
		client:    client,
		keyPrefix: "salesdash:lineitems:",
		ttl:       ttl,
	}
}

// Get returns the cached items for a venue and date
func (c *RedisLineItemCache) Get(ctx context.Context, venueID int, date string) ([]sales.LineItem, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+cacheKey(venueID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached line items: %w", err)
	}

	var items []sales.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached line items: %w", err)
	}
	return copyItems(items), true, nil
}

// Set stores items for a venue and date
func (c *RedisLineItemCache) Set(ctx context.Context, venueID int, date string, items []sales.LineItem, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	raw, err := json.Marshal(copyItems(items))
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+cacheKey(venueID, date), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache line items: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (c *RedisLineItemCache) Close() error {
	return nil
}

var _ LineItemCache = (*RedisLineItemCache)(nil)
