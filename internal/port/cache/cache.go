// Package cache defines the port interface for caching.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching. Standards documents
// are cached by resolved file path for the lifetime of the process.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Bypass is a no-op Cache used when caching is disabled. Gets always miss
// and writes are discarded.
type Bypass struct{}

func (Bypass) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Bypass) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Bypass) Delete(context.Context, string) error { return nil }
