package infrastructures

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", StoreDriverMemory)
	t.Setenv("APP_ENV", "test")
}

func TestLoadConfigDefaults(t *testing.T) {
	setMemoryEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DefaultRateLimits(), cfg.RateLimits)
	assert.Equal(t, DefaultQuotas(), cfg.Quotas)
	assert.Equal(t, int64(5), cfg.BreakerThreshold)
	assert.Equal(t, time.Minute, cfg.BreakerTimeout)
	assert.Equal(t, 2*time.Second, cfg.BackendDelay)
	assert.Equal(t, time.Second, cfg.RetryDelay)
}

func TestLoadConfigOverrides(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("RATE_LIMIT_GLOBAL", "2000")
	t.Setenv("RATE_LIMIT_PER_USER", "20")
	t.Setenv("RATE_LIMIT_WINDOW", "30")
	t.Setenv("QUOTAS_DEFAULT", `{"daily_commands": 300, "daily_downloads": 0}`)
	t.Setenv("BOT_OWNER_IDS", "1, 2,x")
	t.Setenv("BOT_USERNAME", "@hypergiga_bot")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(2000), cfg.RateLimits[models.RateLimitGlobal].Points)
	assert.Equal(t, int64(20), cfg.RateLimits[models.RateLimitPerUser].Points)
	assert.Equal(t, int64(30), cfg.RateLimits[models.RateLimitPerChat].Duration)
	assert.Equal(t, int64(300), cfg.Quotas.DailyCommands)
	assert.Equal(t, int64(50), cfg.Quotas.DailyDownloads, "zero keeps the default")
	assert.Equal(t, []int64{1, 2}, cfg.OwnerIDs)
	assert.Equal(t, "hypergiga_bot", cfg.BotUsername)
}

func TestLoadConfigLimitsFile(t *testing.T) {
	setMemoryEnv(t)
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rate_limits:
  per_command:
    points: 3
    block_duration: 120
quotas:
  daily_ai_requests: 7
`), 0o600))
	t.Setenv("LIMITS_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	perCommand := cfg.RateLimits[models.RateLimitPerCommand]
	assert.Equal(t, models.RateLimitConfig{Points: 3, Duration: 60, BlockDuration: 120}, perCommand)
	assert.Equal(t, int64(7), cfg.Quotas.DailyAIRequests)
	assert.Equal(t, int64(1000), cfg.Quotas.DailyCommands)
}

func TestLoadConfigRejectsUnknownClass(t *testing.T) {
	setMemoryEnv(t)
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limits:\n  per_planet:\n    points: 1\n"), 0o600))
	t.Setenv("LIMITS_FILE", path)

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "per_planet")
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("external driver needs connection strings", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", StoreDriverExternal)
		t.Setenv("DATABASE_URL", "")
		t.Setenv("REDIS_ADDRESS", "")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "config validation failed")
	})

	t.Run("malformed quotas", func(t *testing.T) {
		setMemoryEnv(t)
		t.Setenv("QUOTAS_DEFAULT", "{not json")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "QUOTAS_DEFAULT")
	})

	t.Run("tracing needs an endpoint", func(t *testing.T) {
		setMemoryEnv(t)
		t.Setenv("TRACING_ENABLED", "true")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
