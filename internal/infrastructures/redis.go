package infrastructures

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

func NewRedisClient(cfg *AppConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test the connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return client, nil
}

// NewCounterStore selects the rate-limit counter backend for the configured driver.
func NewCounterStore(cfg *AppConfig, logger *logrus.Logger) (ratelimit.Store, func(), error) {
	if cfg.StoreDriver == StoreDriverMemory {
		logger.Warn("using in-memory counter store; rate limits are per process")
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	store := ratelimit.NewRedisStore(client, ratelimit.WithKeyPrefix(cfg.RedisKeyPrefix))
	return store, func() { client.Close() }, nil
}
