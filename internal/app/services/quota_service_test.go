package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/safatanc/hypergiga-core/pkg/resilience"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quotaNoon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func defaultTestQuotas() models.DefaultQuotas {
	return models.DefaultQuotas{
		DailyCommands:         1000,
		DailyDownloads:        50,
		DailyAIRequests:       100,
		DailyMediaConversions: 20,
	}
}

func newTestQuotaService(store stores.QuotaStore, quotas models.DefaultQuotas, clock *testClock) (*QuotaService, *recordingMetrics) {
	metrics := newRecordingMetrics()
	service := NewQuotaService(store, quotas, resilience.NewBreakers(resilience.Settings{Threshold: 3, Timeout: time.Minute}), metrics, testLogger())
	service.now = clock.Now
	return service, metrics
}

func TestGetQuotaLimitsRoleMultipliers(t *testing.T) {
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), newTestClock(quotaNoon))

	tests := []struct {
		role     models.Role
		commands int64
		download int64
	}{
		{models.RoleUser, 1000, 50},
		{models.RoleAdmin, 2000, 100},
		{models.RoleOwner, 5000, 250},
		{"guest", 1000, 50},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			limits := service.GetQuotaLimits(tt.role)
			assert.Equal(t, tt.commands, limits[models.QuotaCommands])
			assert.Equal(t, tt.download, limits[models.QuotaDownloads])
			assert.Len(t, limits, len(models.QuotaTypes))
		})
	}
}

func TestStaleRowReadsAsZero(t *testing.T) {
	store := stores.NewMemoryStore()
	service, _ := newTestQuotaService(store, defaultTestQuotas(), newTestClock(quotaNoon))
	ctx := context.Background()

	yesterday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.Seed(models.Quota{UserID: 7, QuotaType: models.QuotaCommands, Used: 900, LimitValue: 1000, ResetAt: yesterday})

	usage, err := service.GetCurrentUsage(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, usage[models.QuotaCommands])

	require.NoError(t, service.ConsumeQuota(ctx, 7, models.QuotaCommands, 1, models.RoleUser))

	row, ok := store.Row(7, models.QuotaCommands)
	require.True(t, ok)
	assert.Equal(t, int64(1), row.Used, "a stale row restarts from the consumed amount")
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), row.ResetAt)
}

func TestConsumeQuotaDeniesAtLimit(t *testing.T) {
	quotas := defaultTestQuotas()
	quotas.DailyCommands = 3
	service, metrics := newTestQuotaService(stores.NewMemoryStore(), quotas, newTestClock(quotaNoon))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, service.ConsumeQuota(ctx, 7, models.QuotaCommands, 1, models.RoleUser))
	}

	err := service.ConsumeQuota(ctx, 7, models.QuotaCommands, 1, models.RoleUser)
	require.Error(t, err)
	appErr := errors.From(err)
	assert.Equal(t, errors.KindQuota, appErr.Kind)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), appErr.ResetTime)
	assert.Equal(t, 1, metrics.quotaDenials[models.QuotaCommands])

	check, err := service.CheckQuota(ctx, 7, models.QuotaCommands, models.RoleUser)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Zero(t, check.Remaining)

	check, err = service.CheckQuota(ctx, 7, models.QuotaCommands, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, check.Allowed, "admins get twice the base limit")
	assert.Equal(t, int64(3), check.Remaining)
}

func TestConsumeQuotaAmountAboveRemaining(t *testing.T) {
	quotas := defaultTestQuotas()
	quotas.DailyDownloads = 3
	service, _ := newTestQuotaService(stores.NewMemoryStore(), quotas, newTestClock(quotaNoon))
	ctx := context.Background()

	require.NoError(t, service.ConsumeQuota(ctx, 1, models.QuotaDownloads, 2, models.RoleUser))
	err := service.ConsumeQuota(ctx, 1, models.QuotaDownloads, 2, models.RoleUser)
	assert.True(t, errors.Is(err, errors.KindQuota))

	usage, err := service.GetCurrentUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage[models.QuotaDownloads], "a denied call records nothing")
}

func TestConsumeQuotaRejectsBadInput(t *testing.T) {
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), newTestClock(quotaNoon))
	ctx := context.Background()

	assert.True(t, errors.Is(service.ConsumeQuota(ctx, 1, models.QuotaCommands, 0, models.RoleUser), errors.KindValidation))
	assert.True(t, errors.Is(service.ConsumeQuota(ctx, 1, "naps", 1, models.RoleUser), errors.KindValidation))
}

func TestConsumeQuotaConcurrentNoLostUpdates(t *testing.T) {
	quotas := defaultTestQuotas()
	quotas.DailyAIRequests = 40
	store := stores.NewMemoryStore()
	service, _ := newTestQuotaService(store, quotas, newTestClock(quotaNoon))

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := service.ConsumeQuota(context.Background(), 11, models.QuotaAIRequests, 1, models.RoleUser); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	row, ok := store.Row(11, models.QuotaAIRequests)
	require.True(t, ok)
	assert.Equal(t, admitted.Load(), row.Used, "every admitted unit is recorded")
	assert.GreaterOrEqual(t, admitted.Load(), int64(40))
}

type downQuotaStore struct {
	stores.QuotaStore
	reads atomic.Int64
}

func (s *downQuotaStore) ReadUsage(context.Context, int64, time.Time) ([]models.Quota, error) {
	s.reads.Add(1)
	return nil, errStoreDown
}

func TestQuotaStoreFailureIsTemporary(t *testing.T) {
	store := &downQuotaStore{}
	service, metrics := newTestQuotaService(store, defaultTestQuotas(), newTestClock(quotaNoon))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := service.ConsumeQuota(ctx, 1, models.QuotaCommands, 1, models.RoleUser)
		assert.True(t, errors.Is(err, errors.KindTemporary))
	}
	assert.Equal(t, resilience.StateOpen, service.BreakerState())

	err := service.ConsumeQuota(ctx, 1, models.QuotaCommands, 1, models.RoleUser)
	assert.True(t, errors.Is(err, errors.KindTemporary))
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, int64(3), store.reads.Load(), "an open circuit skips the store")
	assert.Equal(t, 4, metrics.storeErrors["quota"])
}

func TestIncreaseUserQuota(t *testing.T) {
	quotas := defaultTestQuotas()
	quotas.DailyMediaConversions = 2
	service, _ := newTestQuotaService(stores.NewMemoryStore(), quotas, newTestClock(quotaNoon))
	ctx := context.Background()

	require.NoError(t, service.ConsumeQuota(ctx, 5, models.QuotaMediaConversions, 2, models.RoleUser))
	require.True(t, errors.Is(service.ConsumeQuota(ctx, 5, models.QuotaMediaConversions, 1, models.RoleUser), errors.KindQuota))

	require.NoError(t, service.IncreaseUserQuota(ctx, 5, models.QuotaMediaConversions, 3))

	quota, err := service.GetUserQuota(ctx, 5, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(5), quota.Limits[models.QuotaMediaConversions])
	assert.Equal(t, int64(2), quota.Daily[models.QuotaMediaConversions])

	require.NoError(t, service.ConsumeQuota(ctx, 5, models.QuotaMediaConversions, 3, models.RoleUser))
	assert.True(t, errors.Is(service.ConsumeQuota(ctx, 5, models.QuotaMediaConversions, 1, models.RoleUser), errors.KindQuota))

	assert.True(t, errors.Is(service.IncreaseUserQuota(ctx, 5, models.QuotaMediaConversions, 0), errors.KindValidation))
}

func TestIncreaseUserQuotaExpiresAtMidnight(t *testing.T) {
	clock := newTestClock(quotaNoon)
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), clock)
	ctx := context.Background()

	require.NoError(t, service.IncreaseUserQuota(ctx, 5, models.QuotaDownloads, 10))
	clock.Advance(12 * time.Hour)

	quota, err := service.GetUserQuota(ctx, 5, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(50), quota.Limits[models.QuotaDownloads])
}

func TestResetUserQuota(t *testing.T) {
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), newTestClock(quotaNoon))
	ctx := context.Background()

	require.NoError(t, service.ConsumeQuota(ctx, 3, models.QuotaCommands, 10, models.RoleUser))
	require.NoError(t, service.ConsumeQuota(ctx, 3, models.QuotaDownloads, 4, models.RoleUser))

	require.NoError(t, service.ResetUserQuota(ctx, 3, models.QuotaDownloads))
	usage, err := service.GetCurrentUsage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(10), usage[models.QuotaCommands])
	assert.Zero(t, usage[models.QuotaDownloads])

	require.NoError(t, service.ResetUserQuota(ctx, 3, ""))
	usage, err = service.GetCurrentUsage(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, usage[models.QuotaCommands])

	assert.True(t, errors.Is(service.ResetUserQuota(ctx, 3, "naps"), errors.KindValidation))
}

func TestResetExpired(t *testing.T) {
	store := stores.NewMemoryStore()
	clock := newTestClock(quotaNoon)
	service, _ := newTestQuotaService(store, defaultTestQuotas(), clock)
	ctx := context.Background()

	store.Seed(models.Quota{UserID: 1, QuotaType: models.QuotaCommands, Used: 70, LimitValue: 1000, ResetAt: quotaNoon.Add(-12 * time.Hour)})
	require.NoError(t, service.ConsumeQuota(ctx, 2, models.QuotaCommands, 5, models.RoleUser))

	swept, err := service.ResetExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	row, ok := store.Row(1, models.QuotaCommands)
	require.True(t, ok)
	assert.Zero(t, row.Used)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), row.ResetAt)

	live, ok := store.Row(2, models.QuotaCommands)
	require.True(t, ok)
	assert.Equal(t, int64(5), live.Used, "live rows are untouched")
}

func TestGetUserQuotaUsage(t *testing.T) {
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), newTestClock(quotaNoon))
	ctx := context.Background()

	require.NoError(t, service.ConsumeQuota(ctx, 9, models.QuotaDownloads, 5, models.RoleUser))

	usage, err := service.GetUserQuotaUsage(ctx, 9, models.RoleUser)
	require.NoError(t, err)
	downloads := usage[models.QuotaDownloads]
	assert.Equal(t, int64(5), downloads.Used)
	assert.Equal(t, int64(45), downloads.Remaining)
	assert.True(t, decimal.NewFromInt(10).Equal(downloads.Percentage))
	assert.True(t, usage[models.QuotaCommands].Percentage.IsZero())
}

func TestGetQuotaStats(t *testing.T) {
	store := stores.NewMemoryStore()
	quotas := defaultTestQuotas()
	quotas.DailyDownloads = 1
	service, _ := newTestQuotaService(store, quotas, newTestClock(quotaNoon))
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := store.TouchUser(ctx, models.User{ID: id})
		require.NoError(t, err)
	}
	require.NoError(t, service.ConsumeQuota(ctx, 1, models.QuotaDownloads, 1, models.RoleUser))
	require.NoError(t, service.ConsumeQuota(ctx, 2, models.QuotaCommands, 1, models.RoleUser))

	stats, err := service.GetQuotaStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.Exhaustions[models.QuotaDownloads])
	assert.Zero(t, stats.Exhaustions[models.QuotaCommands])
}

func TestStartResetSchedulerStopsOnCancel(t *testing.T) {
	service, _ := newTestQuotaService(stores.NewMemoryStore(), defaultTestQuotas(), newTestClock(quotaNoon))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- service.StartResetScheduler(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
