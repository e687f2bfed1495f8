package cache

import (
	"context"
	"time"
)

// Cache is the contract the domains program against.
// Keeps Redis swappable for in-memory fakes in tests.
type Cache interface {
	// Get fetches a key and unmarshals into dest.
	// found=false means cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON-marshalled) under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX stores value only if the key does not exist yet.
	// Returns true when this call claimed the key. Used as a
	// duplicate-delivery guard for payment callbacks.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
