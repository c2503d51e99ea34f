package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/redis/go-redis/v9"
)

const REDIS_KEY_PREFIX = "catchment:isochrone:"

// 基于Redis的等时圈结果缓存
type RedisCache struct {
	client *redis.Client
	// 为0时不过期
	ttl    time.Duration
	prefix string
}

func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: REDIS_KEY_PREFIX}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*algo.IsochroneResult, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", key, err)
	}
	var result algo.IsochroneResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached isochrone %s: %w", key, err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, result *algo.IsochroneResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode isochrone %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", key, err)
	}
	return nil
}
