// Package cache provides a small generic cache layer. The localization
// resolver keeps loaded translation documents in an instance of this cache
// so isolated resolvers can be constructed in tests.
package cache

import (
	"context"
	"time"
)

// Cache is a generic cache interface. Implementations must be safe for
// concurrent use.
type Cache[K comparable, V any] interface {
	// Get retrieves an item from the cache.
	Get(ctx context.Context, key K) (V, bool, error)

	// Set sets an item in the cache with the specified TTL. A zero TTL
	// means the item never expires.
	Set(ctx context.Context, key K, value V, ttl time.Duration) error

	// Delete removes an item from the cache.
	Delete(ctx context.Context, key K) error

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key K) (bool, error)

	// Flush clears all items from the cache.
	Flush(ctx context.Context) error

	// Close releases any resources used by the cache.
	Close() error
}
