package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer.
// Implementations: infrastructure/cache.RedisCache.
type Cache interface {
	// Get loads key into dest.
	// found = false means a cache miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value as JSON with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Ping(ctx context.Context) error
}
