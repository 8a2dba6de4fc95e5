// Package cache implements the read-through recipe cache: byte providers
// (Redis, Ristretto, BigCache), value codecs and a generation-checked cache
// on top of them.
package cache

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Implementations must be safe for
// concurrent use and return exactly the bytes previously passed to Set.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A non-positive ttl means no expiry where
	// the backend supports it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
	Close(ctx context.Context) error
}
