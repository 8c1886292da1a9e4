package cache

import (
	"context"
	"time"

	"EngineMirror/internal/domain/repository"
)

// LayeredCache implements two-level cache (L1: Memory, L2: any byte cache,
// usually Redis).
type LayeredCache struct {
	memCache *MemoryCache
	l2       repository.BytesCache
	l1TTL    time.Duration
}

// NewLayeredCache puts a memory cache in front of l2.
func NewLayeredCache(l2 repository.BytesCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 256,
		L1TTL:         time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache: NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		l2:       l2,
		l1TTL:    cfg.L1TTL,
	}
}

// Set writes through: L2 first, then memory.
func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.memCache.Set(ctx, key, value, ttl)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.memCache.Get(ctx, key); ok {
		return b, true, nil
	}

	b, ok, err := lc.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	_ = lc.memCache.Set(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	if d, ok := lc.l2.(interface {
		Delete(context.Context, ...string) error
	}); ok {
		return d.Delete(ctx, keys...)
	}
	return nil
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	if c, ok := lc.l2.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
