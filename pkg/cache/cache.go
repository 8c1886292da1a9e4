package cache

import (
	"context"
	"time"

	"EngineMirror/internal/domain/repository"
)

// Service is a byte cache that can also drop keys and release resources.
type Service interface {
	repository.BytesCache
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

var (
	_ Service = (*MemoryCache)(nil)
	_ Service = (*RedisCache)(nil)
	_ Service = (*LayeredCache)(nil)
)

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error                  { return nil }
func (Nop) Close() error                                             { return nil }
