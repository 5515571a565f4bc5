package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/slackmachine/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Storage     = (*Namespaced)(nil)
	_ core.Incrementer = (*Namespaced)(nil)
)

func TestNamespaced_KeysArePrefixed(t *testing.T) {
	backend := NewInMemory()
	ns := Named(backend, "plugin.A")
	ctx := context.Background()

	if err := ns.Set(ctx, "key", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// the backend sees the namespaced key, not the bare one
	if _, found, _ := backend.Get(ctx, "plugin.A:key"); !found {
		t.Fatal("expected the prefixed key on the backend")
	}
	if _, found, _ := backend.Get(ctx, "key"); found {
		t.Fatal("bare key must not exist on the backend")
	}

	v, found, err := ns.Get(ctx, "key")
	if err != nil || !found || string(v) != "v" {
		t.Fatalf("namespaced get: %q %v %v", v, found, err)
	}
}

func TestNamespaced_Isolation(t *testing.T) {
	backend := NewInMemory()
	a := Named(backend, "plugin.A")
	b := Named(backend, "plugin.B")
	ctx := context.Background()

	if err := a.Set(ctx, "key", []byte("from A"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if has, _ := b.Has(ctx, "key"); has {
		t.Fatal("namespaces must not see each other's keys")
	}

	if err := b.Set(ctx, "key", []byte("from B"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := a.Delete(ctx, "key"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if has, _ := b.Has(ctx, "key"); !has {
		t.Fatal("deleting in one namespace must not affect the other")
	}
}

func TestNamespaced_SharedEscapeHatch(t *testing.T) {
	backend := NewInMemory()
	ns := Named(backend, "plugin.A")

	if ns.Shared() != core.Storage(backend) {
		t.Fatal("Shared must expose the unscoped backend")
	}
}

func TestNamespaced_Incr(t *testing.T) {
	backend := NewInMemory()
	ns := Named(backend, "plugin.A")
	ctx := context.Background()

	n, err := ns.Incr(ctx, "counter", 3)
	if err != nil || n != 3 {
		t.Fatalf("incr: %d %v", n, err)
	}
	if _, found, _ := backend.Get(ctx, "plugin.A:counter"); !found {
		t.Fatal("counter must live under the namespaced key")
	}
}

// nonIncrementing is a Storage without atomic increment support.
type nonIncrementing struct{ core.Storage }

func (nonIncrementing) Close() error { return nil }

func TestNamespaced_IncrUnsupportedBackend(t *testing.T) {
	ns := Named(nonIncrementing{Storage: NewInMemory()}, "plugin.A")
	if _, err := ns.Incr(context.Background(), "counter", 1); err == nil {
		t.Fatal("incr must fail when the backend offers no atomic increment")
	}
}

func TestNamespaced_TTLPassthrough(t *testing.T) {
	backend := NewInMemory()
	now := time.Now()
	backend.now = func() time.Time { return now }
	ns := Named(backend, "plugin.A")
	ctx := context.Background()

	if err := ns.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if has, _ := ns.Has(ctx, "k"); has {
		t.Fatal("ttl must apply through the namespace wrapper")
	}
}
