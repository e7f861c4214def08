package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	defaultNamespace = "yatube:cache:"
	scanBatch        = 100
)

// RedisCache keeps pages in Redis so several processes share them. When
// Redis is unreachable pages are rendered on every request.
type RedisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
	observe   Observer
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client:    client,
		namespace: defaultNamespace,
		ttl:       ttl,
		logger:    logger,
		observe:   noopObserver,
	}
}

func (c *RedisCache) WithNamespace(ns string) *RedisCache {
	c.namespace = ns
	return c
}

func (c *RedisCache) WithObserver(o Observer) *RedisCache {
	c.observe = o
	return c
}

func (c *RedisCache) key(k string) string {
	return c.namespace + k
}

func (c *RedisCache) GetOrCompute(ctx context.Context, key string, fn ComputeFunc) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case err == nil:
		c.observe(true)
		return data, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
	}
	c.observe(false)

	data, err = fn(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}

// Clear deletes every key under the namespace.
func (c *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.namespace+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan %s*: %w", c.namespace, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
