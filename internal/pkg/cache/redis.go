// Package cache is a thin, namespaced wrapper over go-redis for short-lived
// console state.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get returns "" and no error for a missing or expired key.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// GenerateKey builds "<namespace>:<operation>:<key>".
	GenerateKey(operation, key string) string
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

type redisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache connects lazily; call Ping to fail fast at startup.
func NewRedisCache(opts Options, namespace string) Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		namespace: namespace,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache: get %s: %w", key, err)
	}
	return val, nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.namespace, operation, key)
}

func (r *redisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping %s: %w", r.client.Options().Addr, err)
	}
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
