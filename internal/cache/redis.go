package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores JSON-encoded values in Redis.
type RedisCache struct {
	client    redis.Cmdable
	namespace string
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // optional prefix prepended to every key
}

// NewRedisCache creates a RedisCache with its own client.
func NewRedisCache(opts RedisOptions) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisCacheWithClient(client, opts.Namespace)
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client redis.Cmdable, namespace string) *RedisCache {
	return &RedisCache{client: client, namespace: namespace}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client when it supports it.
func (c *RedisCache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[WARN] cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] cache encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, c.namespace+key, data, ttl).Err(); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
}
