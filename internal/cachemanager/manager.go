package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a string-keyed TTL cache over values of type V.
type CacheManager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}
