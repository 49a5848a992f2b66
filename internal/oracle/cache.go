package oracle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed labels by program reference.
type Cache interface {
	Get(ctx context.Context, ref string) (string, bool, error)
	Set(ctx context.Context, ref, label string) error
}

type memoryCache struct {
	mu     sync.RWMutex
	labels map[string]string
}

func NewMemoryCache() Cache {
	return &memoryCache{labels: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, ref string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.labels[ref]
	return l, ok, nil
}

func (m *memoryCache) Set(_ context.Context, ref, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[ref] = label
	return nil
}

// RedisCache keeps labels in Redis so several grader processes share one
// computation per program.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "examgrader:oracle:", ttl: ttl}
}

func (c *RedisCache) key(ref string) string { return c.prefix + ref }

func (c *RedisCache) Get(ctx context.Context, ref string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key(ref)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, ref, label string) error {
	return c.client.Set(ctx, c.key(ref), label, c.ttl).Err()
}

// Cached wraps a GroundTruth so each reference is computed at most once
// per cache. Failures are not cached.
type Cached struct {
	Source GroundTruth
	Cache  Cache
}

func (c Cached) Compute(ctx context.Context, ref string) (string, error) {
	if label, ok, err := c.Cache.Get(ctx, ref); err == nil && ok {
		return label, nil
	}
	label, err := c.Source.Compute(ctx, ref)
	if err != nil {
		return "", err
	}
	// a cache write failure only costs a recomputation later
	_ = c.Cache.Set(ctx, ref, label)
	return label, nil
}
