package core

import (
	"context"
	"errors"
	"time"
)

// ErrStorageUnavailable marks transport or backend failures of a networked
// storage implementation. Absence of a key is never an error; it is
// reported through the found result of Get / Has.
var ErrStorageUnavailable = errors.New("storage backend unavailable")

// Storage is the capability contract every key-value backend must satisfy.
// Values are opaque bytes; serialization is the caller's responsibility so
// backends stay interchangeable. Implementations must be safe for
// concurrent use: the dispatch engine shares one backend across all
// concurrently running handlers and adds no locking of its own.
type Storage interface {
	// Get returns the value stored under key. found is false when the key
	// is absent or expired; that case carries a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A ttl of zero means no expiry; backends
	// without native TTL support emulate expiry on read.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Has reports whether key currently exists.
	Has(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Size returns the number of stored keys. Backends may report an
	// approximation when an exact count is not cheaply available.
	Size(ctx context.Context) (int64, error)

	// Close releases any underlying resources (connections, clients).
	Close() error
}

// Incrementer is an optional capability for backends with a native atomic
// increment primitive. Callers that need compare-and-swap semantics on a
// backend without it must implement optimistic retry above the interface.
type Incrementer interface {
	// Incr atomically adds delta to the integer stored under key,
	// initializing an absent key to zero first, and returns the new value.
	Incr(ctx context.Context, key string, delta int64) (int64, error)
}
