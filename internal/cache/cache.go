// Package cache defines the key-value cache contract used for embedding
// reuse and spend counters. Implementations live in subpackages (redis).
package cache

import (
	"context"
	"time"
)

// Store is the cache facade.
type Store interface {
	Pinger
	KV
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks cache connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KV provides simple key-value operations.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
