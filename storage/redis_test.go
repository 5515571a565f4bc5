package storage

import (
	"errors"
	"testing"

	"github.com/hupe1980/slackmachine/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Storage     = (*Redis)(nil)
	_ core.Incrementer = (*Redis)(nil)
)

func TestRedis_KeyPrefix(t *testing.T) {
	s := NewRedis()
	if got := s.key("foo"); got != "SM:foo" {
		t.Fatalf("default prefix wrong: %q", got)
	}

	s = NewRedis(func(o *RedisOptions) { o.KeyPrefix = "BOT" })
	if got := s.key("foo"); got != "BOT:foo" {
		t.Fatalf("custom prefix wrong: %q", got)
	}
}

func TestUnavailable_WrapsSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("redis get", cause)

	if !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatal("expected ErrStorageUnavailable in the chain")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause in the chain")
	}
}
