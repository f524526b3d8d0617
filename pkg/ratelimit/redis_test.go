//go:build integration

package ratelimit_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
)

func newTestStore(t *testing.T) *ratelimit.RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis not available at %s: %v", addr, err)
	}

	prefix := "test:" + t.Name()
	t.Cleanup(func() {
		iter := client.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		client.Close()
	})
	return ratelimit.NewRedisStore(client, ratelimit.WithKeyPrefix(prefix))
}

func TestRedisStoreIncrementWithExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.IncrementWithExpiry(ctx, "rate_limit:per_user:user:7", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ttl, ok, err := store.TTL(ctx, "rate_limit:per_user:user:7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)

	count, err = store.IncrementWithExpiry(ctx, "rate_limit:per_user:user:7", 4, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	ttl, _, err = store.TTL(ctx, "rate_limit:per_user:user:7")
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute, "second increment must keep the first window")

	got, err := store.Get(ctx, "rate_limit:per_user:user:7")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	require.NoError(t, store.Delete(ctx, "rate_limit:per_user:user:7"))
	got, err = store.Get(ctx, "rate_limit:per_user:user:7")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, ok, err = store.TTL(ctx, "rate_limit:per_user:user:7")
	require.NoError(t, err)
	assert.False(t, ok)
}
