// Package cache provides pluggable byte caches for remote API responses.
//
// # Overview
//
// Installers repeatedly query a handful of remote JSON APIs: the version
// manifest, loader metadata and JVM runtime indexes. [Cache] lets those
// responses be stored between runs and shared between machines:
//
//   - [FileCache]: JSON files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every backend uses the same
// namespaced layout. A [ScopedKeyer] adds a prefix, for example to keep
// responses from a mirror apart from the official endpoints.
//
// # Retries
//
// [Backoff] retries an operation whose error was marked with
// [Retryable]. It is used by API clients and by the install command; the
// download engine never retries on its own.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were deleted.
	Clear(ctx context.Context) (int, error)
}
