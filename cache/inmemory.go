package cache

import (
	"context"
	"sync"
	"time"
)

// inMemoryItem represents a cache item with expiration.
type inMemoryItem[V any] struct {
	value      V
	expiration time.Time
}

// isExpired checks if the item has expired.
func (i *inMemoryItem[V]) isExpired() bool {
	if i.expiration.IsZero() {
		return false
	}
	return time.Now().After(i.expiration)
}

// InMemory is a thread-safe in-memory cache. Values are stored as-is, so
// a cached value is returned to every caller by reference.
type InMemory[K comparable, V any] struct {
	items      sync.Map // map[K]*inMemoryItem[V]
	cleanupMu  sync.Mutex
	stopClean  chan struct{}
	cleanupInt time.Duration
}

const defaultCleanupInterval = 5 * time.Minute

// NewInMemory creates a new in-memory cache.
func NewInMemory[K comparable, V any]() *InMemory[K, V] {
	c := &InMemory[K, V]{
		stopClean:  make(chan struct{}),
		cleanupInt: defaultCleanupInterval,
	}

	go c.startCleanup()

	return c
}

// startCleanup periodically removes expired items.
func (c *InMemory[K, V]) startCleanup() {
	ticker := time.NewTicker(c.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopClean:
			return
		}
	}
}

// cleanup removes expired items from the cache.
func (c *InMemory[K, V]) cleanup() {
	c.items.Range(func(key, value any) bool {
		item, ok := value.(*inMemoryItem[V])
		if ok && item.isExpired() {
			c.items.Delete(key)
		}
		return true
	})
}

// Get retrieves an item from the cache.
func (c *InMemory[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	var zero V

	value, ok := c.items.Load(key)
	if !ok {
		return zero, false, nil
	}

	item, ok := value.(*inMemoryItem[V])
	if !ok || item.isExpired() {
		c.items.Delete(key)
		return zero, false, nil
	}

	return item.value, true, nil
}

// Set sets an item in the cache with the specified TTL.
func (c *InMemory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) error {
	item := &inMemoryItem[V]{
		value: value,
	}

	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}

	c.items.Store(key, item)
	return nil
}

// Delete removes an item from the cache.
func (c *InMemory[K, V]) Delete(_ context.Context, key K) error {
	c.items.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache.
func (c *InMemory[K, V]) Exists(_ context.Context, key K) (bool, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return false, nil
	}

	if item, itemOK := value.(*inMemoryItem[V]); itemOK && item.isExpired() {
		c.items.Delete(key)
		return false, nil
	}

	return true, nil
}

// Flush clears all items from the cache.
func (c *InMemory[K, V]) Flush(_ context.Context) error {
	c.items.Range(func(key, _ any) bool {
		c.items.Delete(key)
		return true
	})
	return nil
}

// Close stops the cleanup goroutine and releases resources.
func (c *InMemory[K, V]) Close() error {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()

	select {
	case <-c.stopClean:
		// Already closed
		return nil
	default:
		close(c.stopClean)
	}

	return nil
}
