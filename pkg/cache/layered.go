package cache

import (
	"context"
	"errors"
	"time"
)

// layeredMemoryTTL caps how long the memory layer may serve a value without
// consulting Redis. Freshness markers are written with multi-month TTLs; the
// memory copy must turn over much faster than that so a Touch from another
// process becomes visible.
const layeredMemoryTTL = 30 * time.Second

// LayeredCache fronts Redis with an in-process memory layer. Redis is
// authoritative: writes go to Redis first and a failed Redis write is never
// masked by a memory hit.
type LayeredCache struct {
	mem   *MemoryCache
	redis *RedisCache
}

func NewLayeredCache(redis *RedisCache) *LayeredCache {
	return &LayeredCache{mem: NewMemoryCache(1000), redis: redis}
}

func (l *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := l.redis.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = l.mem.Set(ctx, key, value, l.memTTL(ttl))
	return nil
}

func (l *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := l.mem.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := l.redis.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = l.mem.Set(ctx, key, dest, layeredMemoryTTL)
	return nil
}

func (l *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = l.mem.Delete(ctx, keys...)
	return l.redis.Delete(ctx, keys...)
}

func (l *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := l.mem.Exists(ctx, key); ok {
		return true, nil
	}
	ok, err := l.redis.Exists(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return false, err
	}
	return ok, nil
}

func (l *LayeredCache) Close() error {
	l.mem.Close()
	return l.redis.Close()
}

func (l *LayeredCache) memTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > layeredMemoryTTL {
		return layeredMemoryTTL
	}
	return ttl
}

var _ Service = (*LayeredCache)(nil)
