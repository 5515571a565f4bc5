package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/slackmachine/core"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates the connection, empty for none.
	Password string

	// DB selects the logical Redis database.
	DB int

	// KeyPrefix is prepended to every key so multiple bots can share one
	// Redis instance. Defaults to "SM".
	KeyPrefix string
}

// Redis is a Storage implementation backed by a Redis server via go-redis.
// Persistence follows the Redis server's own configuration; TTLs map to
// native key expiry. Transport failures wrap core.ErrStorageUnavailable.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Redis backend with its own client.
func NewRedis(optFns ...func(o *RedisOptions)) *Redis {
	opts := RedisOptions{
		Addr:      "localhost:6379",
		KeyPrefix: "SM",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &Redis{client: client, prefix: opts.KeyPrefix + ":"}
}

// NewRedisFromClient constructs a Redis backend reusing an existing client.
func NewRedisFromClient(client *redis.Client, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = "SM"
	}
	return &Redis{client: client, prefix: keyPrefix + ":"}
}

func (s *Redis) key(key string) string { return s.prefix + key }

// Get returns the value stored under key.
func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("redis get", err)
	}
	return value, true, nil
}

// Set stores value under key with an optional TTL (native Redis expiry).
func (s *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return unavailable("redis set", err)
	}
	return nil
}

// Has reports whether key exists.
func (s *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, unavailable("redis exists", err)
	}
	return n > 0, nil
}

// Delete removes key.
func (s *Redis) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("redis del", err)
	}
	return nil
}

// Size counts the keys under this backend's prefix using SCAN, so other
// tenants of the same Redis instance are not included.
func (s *Redis) Size(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 1000).Result()
		if err != nil {
			return 0, unavailable("redis scan", err)
		}
		total += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

// Close releases the underlying client.
func (s *Redis) Close() error { return s.client.Close() }

// Incr atomically adds delta to the integer stored under key using INCRBY.
func (s *Redis) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	value, err := s.client.IncrBy(ctx, s.key(key), delta).Result()
	if err != nil {
		return 0, unavailable("redis incrby", err)
	}
	return value, nil
}

// unavailable wraps a backend transport error so callers can detect it with
// errors.Is(err, core.ErrStorageUnavailable) while keeping the cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(core.ErrStorageUnavailable, err))
}
