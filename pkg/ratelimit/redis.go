package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript increments a counter and sets its expiry only when the
// counter has none, which is the case exactly once per window.
var incrementScript = redis.NewScript(`
local current = redis.call('INCRBY', KEYS[1], ARGV[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return current
`)

// RedisStore implements Store using Redis as storage
type RedisStore struct {
	redis *redis.Client
	// prefix for redis keys to avoid collisions
	keyPrefix string
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key written by the store.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{redis: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// formatKey formats the key with prefix
func (s *RedisStore) formatKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

func (s *RedisStore) IncrementWithExpiry(ctx context.Context, key string, points int64, window time.Duration) (int64, error) {
	return incrementScript.Run(ctx, s.redis, []string{s.formatKey(key)}, points, window.Milliseconds()).Int64()
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := s.redis.PTTL(ctx, s.formatKey(key)).Result()
	if err != nil {
		return 0, false, err
	}
	// -1 (no expiry) and -2 (missing) come back as negative durations.
	if ttl <= 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	count, err := s.redis.Get(ctx, s.formatKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.redis.Del(ctx, s.formatKey(key)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
