package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is used when a caller does not set an explicit TTL.
const DefaultTTL = 600 * time.Second

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the contract every cache backend satisfies.
//
// Set must be atomic per key: a concurrent Get observes either the old
// or the new value, never a partial one. Last writer wins.
type Store interface {
	// Get returns the entry for key, or ErrCacheMiss if it is absent or expired.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores data under key for ttl. A ttl <= 0 means DefaultTTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
