package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/infrastructure/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewLineItemCache creates the cache selected by configuration. It returns
// nil for the "none" driver. A nil client with the redis driver falls back
// to the in-memory cache with a warning.
func NewLineItemCache(cfg config.CacheConfig, client redis.UniversalClient, logger *zap.Logger) LineItemCache {
	switch cfg.Driver {
	case config.CacheDriverNone:
		logger.Info("line item cache disabled")
		return nil
	case config.CacheDriverRedis:
		if client != nil {
			logger.Info("using Redis line item cache", zap.Duration("ttl", cfg.TTL))
			return NewRedisLineItemCache(client, cfg.TTL)
		}
		logger.Warn("Redis unavailable, falling back to in-memory line item cache. " +
			"Instances will not share upstream responses.")
	}
	logger.Info("using in-memory line item cache", zap.Duration("ttl", cfg.TTL))
	return NewInMemoryLineItemCache(cfg.TTL)
}
