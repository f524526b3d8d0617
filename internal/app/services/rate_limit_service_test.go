package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRateLimits() map[models.RateLimitClass]models.RateLimitConfig {
	return map[models.RateLimitClass]models.RateLimitConfig{
		models.RateLimitGlobal:     {Points: 1000, Duration: 60, BlockDuration: 300},
		models.RateLimitPerUser:    {Points: 3, Duration: 60, BlockDuration: 300},
		models.RateLimitPerCommand: {Points: 10, Duration: 60, BlockDuration: 300},
		models.RateLimitPerChat:    {Points: 50, Duration: 60, BlockDuration: 300},
	}
}

func TestKeyDerivation(t *testing.T) {
	assert.Equal(t, "global", GlobalKey())
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "chat:-100123", ChatKey(-100123))
	assert.Equal(t, "command:ping", CommandKey("ping"))
	assert.Equal(t, "rate_limit:per_user:user:42", storeKey(models.RateLimitPerUser, UserKey(42)))
}

func TestTryConsumeFixedWindow(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	metrics := newRecordingMetrics()
	service := NewRateLimitService(ratelimit.NewMemoryStore(ratelimit.WithClock(clock.Now)), testRateLimits(), metrics, testLogger())
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		result, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(7), 1, models.RoleUser)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3-i, result.Remaining)
	}

	clock.Advance(20 * time.Second)
	result, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(7), 1, models.RoleUser)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 40*time.Second, result.RetryAfter, "retry after is the remaining window")
	assert.Equal(t, 1, metrics.rateLimitHits[models.RateLimitPerUser])

	clock.Advance(40 * time.Second)
	result, err = service.TryConsume(ctx, models.RateLimitPerUser, UserKey(7), 1, models.RoleUser)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "a new window starts from a fresh count")
	assert.Equal(t, int64(2), result.Remaining)
}

func TestTryConsumeRetryAfterFallsBackToBlockDuration(t *testing.T) {
	store := &noTTLStore{Store: ratelimit.NewMemoryStore()}
	service := NewRateLimitService(store, testRateLimits(), newRecordingMetrics(), testLogger())
	ctx := context.Background()

	var result *models.RateLimitResult
	var err error
	for i := 0; i < 4; i++ {
		result, err = service.TryConsume(ctx, models.RateLimitPerUser, UserKey(1), 1, models.RoleUser)
		require.NoError(t, err)
	}
	assert.False(t, result.Allowed)
	assert.Equal(t, 300*time.Second, result.RetryAfter)
}

type noTTLStore struct {
	ratelimit.Store
}

func (noTTLStore) TTL(context.Context, string) (time.Duration, bool, error) {
	return 0, false, nil
}

func TestTryConsumeFailsOpen(t *testing.T) {
	metrics := newRecordingMetrics()
	service := NewRateLimitService(downRateStore{}, testRateLimits(), metrics, testLogger())

	result, err := service.TryConsume(context.Background(), models.RateLimitGlobal, GlobalKey(), 1, models.RoleUser)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(failOpenRemaining), result.Remaining)
	assert.Equal(t, 1, metrics.storeErrors["rate_limit"])
}

func TestTryConsumeUnknownClass(t *testing.T) {
	service := NewRateLimitService(ratelimit.NewMemoryStore(), testRateLimits(), newRecordingMetrics(), testLogger())

	_, err := service.TryConsume(context.Background(), "per_planet", "x", 1, models.RoleUser)
	assert.True(t, errors.Is(err, errors.KindValidation))
}

func TestTryConsumeAllShortCircuits(t *testing.T) {
	store := &countingStore{Store: ratelimit.NewMemoryStore()}
	service := NewRateLimitService(store, testRateLimits(), newRecordingMetrics(), testLogger())
	ctx := context.Background()
	checks := CanonicalChecks(7, 9, "ping")

	for i := 0; i < 3; i++ {
		result, err := service.TryConsumeAll(ctx, checks, models.RoleUser)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}
	require.Len(t, store.Increments(), 12)

	result, err := service.TryConsumeAll(ctx, checks, models.RoleUser)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, models.RateLimitPerUser, result.BlockedClass)
	assert.Positive(t, result.RetryAfter)

	increments := store.Increments()[12:]
	assert.Equal(t, []string{
		"rate_limit:global:global",
		"rate_limit:per_user:user:7",
	}, increments, "checks after the denial must not be evaluated")
}

func TestCanonicalChecks(t *testing.T) {
	t.Run("command event", func(t *testing.T) {
		checks := CanonicalChecks(1, 2, "help")
		classes := make([]models.RateLimitClass, len(checks))
		for i, c := range checks {
			classes[i] = c.Class
		}
		assert.Equal(t, []models.RateLimitClass{
			models.RateLimitGlobal,
			models.RateLimitPerUser,
			models.RateLimitPerChat,
			models.RateLimitPerCommand,
		}, classes)
		assert.Equal(t, "command:help", checks[3].Key)
	})

	t.Run("plain message", func(t *testing.T) {
		assert.Len(t, CanonicalChecks(1, 2, ""), 3)
	})
}

func TestResetRestoresHeadroom(t *testing.T) {
	service := NewRateLimitService(ratelimit.NewMemoryStore(), testRateLimits(), newRecordingMetrics(), testLogger())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(5), 1, models.RoleUser)
		require.NoError(t, err)
	}

	status, err := service.Status(ctx, models.RateLimitPerUser, UserKey(5))
	require.NoError(t, err)
	assert.Equal(t, int64(4), status.Count)
	assert.Zero(t, status.Remaining)

	require.NoError(t, service.Reset(ctx, models.RateLimitPerUser, UserKey(5)))

	result, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(5), 1, models.RoleUser)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(2), result.Remaining)
}

func TestResetStoreFailure(t *testing.T) {
	service := NewRateLimitService(downRateStore{}, testRateLimits(), newRecordingMetrics(), testLogger())

	err := service.Reset(context.Background(), models.RateLimitGlobal, GlobalKey())
	assert.True(t, errors.Is(err, errors.KindTemporary))
}

func TestUpdateConfig(t *testing.T) {
	service := NewRateLimitService(ratelimit.NewMemoryStore(), testRateLimits(), newRecordingMetrics(), testLogger())

	updated, err := service.UpdateConfig(models.RateLimitPerUser, models.RateLimitConfig{Points: 1})
	require.NoError(t, err)
	assert.Equal(t, models.RateLimitConfig{Points: 1, Duration: 60, BlockDuration: 300}, updated)

	ctx := context.Background()
	first, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(3), 1, models.RoleUser)
	require.NoError(t, err)
	second, err := service.TryConsume(ctx, models.RateLimitPerUser, UserKey(3), 1, models.RoleUser)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.False(t, second.Allowed)

	_, err = service.UpdateConfig("per_planet", models.RateLimitConfig{Points: 1})
	assert.Error(t, err)
	_, err = service.UpdateConfig(models.RateLimitGlobal, models.RateLimitConfig{Points: -1})
	assert.Error(t, err)

	configs := service.Configs()
	configs[models.RateLimitGlobal] = models.RateLimitConfig{}
	cfg, err := service.Config(models.RateLimitGlobal)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.Points, "Configs returns a copy")
}

func TestTryConsumeConcurrent(t *testing.T) {
	cfgs := testRateLimits()
	cfgs[models.RateLimitPerChat] = models.RateLimitConfig{Points: 50, Duration: 60, BlockDuration: 60}
	service := NewRateLimitService(ratelimit.NewMemoryStore(), cfgs, newRecordingMetrics(), testLogger())

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.TryConsume(context.Background(), models.RateLimitPerChat, ChatKey(9), 1, models.RoleUser)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
