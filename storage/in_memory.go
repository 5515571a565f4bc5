package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// InMemory is a volatile, process-local Storage implementation backed by a
// map. It is safe for concurrent access and best suited for tests, demos
// and single-instance bots that can afford to lose state on restart. TTLs
// are honored by checking the stored expiry on every access; expired
// entries are removed lazily.
type InMemory struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{items: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the value stored under key, copying it so callers cannot
// mutate internal state.
func (s *InMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		delete(s.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value under key, with an optional TTL.
func (s *InMemory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	e := memoryEntry{value: stored}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}

// Has reports whether key currently exists and has not expired.
func (s *InMemory) Has(ctx context.Context, key string) (bool, error) {
	_, found, err := s.Get(ctx, key)
	return found, err
}

// Delete removes key.
func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Size returns the number of live (non-expired) keys.
func (s *InMemory) Size(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for key, e := range s.items {
		if e.expired(now) {
			delete(s.items, key)
			continue
		}
		n++
	}
	return n, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemory) Close() error { return nil }

// Incr atomically adds delta to the decimal integer stored under key. An
// absent key counts as zero. The entry's TTL, if any, is preserved.
func (s *InMemory) Incr(_ context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current int64
	e, ok := s.items[key]
	if ok && !e.expired(s.now()) {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("incr %q: existing value is not an integer: %w", key, err)
		}
		current = parsed
	} else {
		e = memoryEntry{}
	}
	current += delta
	e.value = []byte(strconv.FormatInt(current, 10))
	s.items[key] = e
	return current, nil
}
