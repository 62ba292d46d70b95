// Package cache holds fetched payloads keyed by identifier for the length of
// a batch run.
//
// A Cache never evicts: the source sheets reference a small, finite set of
// base records, so memory is bounded by the input. Create one per run and pass
// it to whatever needs it.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches the value for key on a miss.
type Loader[V any] func(ctx context.Context, key string) (V, error)

type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	group singleflight.Group
}

func New[V any]() *Cache[V] {
	return &Cache[V]{items: make(map[string]V)}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetOrLoad returns the cached value or calls load once per key, even when
// several goroutines miss at the same time. Failed loads are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load Loader[V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx, key)
		if err != nil {
			return v, err
		}
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
