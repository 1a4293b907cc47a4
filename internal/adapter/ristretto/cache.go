// Package ristretto implements the cache port with dgraph-io/ristretto.
// It holds standards documents read from the rules directory so repeated
// context generations do not re-read the same files.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// avgDocBytes is the assumed size of a cached standards document, used to
// size the admission counters.
const avgDocBytes = 4096

// Cache wraps a ristretto cache keyed by resolved file path. Values are
// cost-accounted by byte size; entries set with ttl 0 never expire, which
// is the normal mode since documents are immutable for a process run.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a document cache bounded to maxCostBytes of content.
func New(maxCostBytes int64) (*Cache, error) {
	counters := maxCostBytes / avgDocBytes * 10
	if counters < 64 {
		counters = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a document from the cache.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a document. Writes are admitted asynchronously; a reader that
// misses right after Set simply falls back to the underlying file.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete removes a document from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Wait blocks until pending writes are applied. Tests use it; production
// code never needs to.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Stats returns hit and miss counters for telemetry export.
func (c *Cache) Stats() *ristretto.Metrics {
	return c.c.Metrics
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
