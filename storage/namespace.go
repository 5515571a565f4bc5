package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/slackmachine/core"
)

// Namespaced wraps a backend and prefixes every key with a namespace,
// typically the owning plugin's fully-qualified name. It keeps plugins from
// stepping on each other's entries while sharing one physical backend.
type Namespaced struct {
	backend   core.Storage
	namespace string
}

// Named wraps backend so all keys are scoped to namespace.
func Named(backend core.Storage, namespace string) *Namespaced {
	return &Namespaced{backend: backend, namespace: namespace}
}

func (n *Namespaced) key(key string) string { return n.namespace + ":" + key }

// Shared returns the unscoped backend for deliberate cross-plugin keys.
func (n *Namespaced) Shared() core.Storage { return n.backend }

// Get returns the value stored under the namespaced key.
func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.backend.Get(ctx, n.key(key))
}

// Set stores value under the namespaced key.
func (n *Namespaced) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return n.backend.Set(ctx, n.key(key), value, ttl)
}

// Has reports whether the namespaced key exists.
func (n *Namespaced) Has(ctx context.Context, key string) (bool, error) {
	return n.backend.Has(ctx, n.key(key))
}

// Delete removes the namespaced key.
func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.backend.Delete(ctx, n.key(key))
}

// Size reports the backend-wide key count, not just this namespace; the
// underlying backends cannot count a prefix uniformly.
func (n *Namespaced) Size(ctx context.Context) (int64, error) {
	return n.backend.Size(ctx)
}

// Close is a no-op; the wrapped backend's lifecycle belongs to whoever
// constructed it.
func (n *Namespaced) Close() error { return nil }

// Incr delegates to the backend's atomic increment when it offers one.
func (n *Namespaced) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	inc, ok := n.backend.(core.Incrementer)
	if !ok {
		return 0, fmt.Errorf("incr %q: backend %T offers no atomic increment", key, n.backend)
	}
	return inc.Incr(ctx, n.key(key), delta)
}
