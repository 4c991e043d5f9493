package repository

import (
	"context"
	"time"
)

// CacheRepository - key/value cache used in front of Postgres
type CacheRepository interface {
	// Get returns the cached value, or nil with no error on a miss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error

	// Exists checks whether the key is present
	Exists(ctx context.Context, key string) (bool, error)

	// Version returns the current value of a version counter (0 if unset)
	Version(ctx context.Context, name string) (int64, error)

	// BumpVersion increments a version counter, invalidating every key built from it
	BumpVersion(ctx context.Context, name string) (int64, error)
}
