package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/observability"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitKeyPrefix = "rate_limit"
	// failOpenRemaining is reported when the counter store is unreachable.
	failOpenRemaining = 999
)

func GlobalKey() string { return "global" }

func UserKey(userID int64) string { return "user:" + strconv.FormatInt(userID, 10) }

func ChatKey(chatID int64) string { return "chat:" + strconv.FormatInt(chatID, 10) }

func CommandKey(command string) string { return "command:" + command }

// RateLimitService admits events against fixed-window counters, one window per
// class and key. Every TryConsume call consumes points when it succeeds.
type RateLimitService struct {
	store   ratelimit.Store
	metrics observability.Metrics
	logger  *logrus.Logger

	mu      sync.RWMutex
	configs map[models.RateLimitClass]models.RateLimitConfig
}

func NewRateLimitService(store ratelimit.Store, configs map[models.RateLimitClass]models.RateLimitConfig, metrics observability.Metrics, logger *logrus.Logger) *RateLimitService {
	copied := make(map[models.RateLimitClass]models.RateLimitConfig, len(configs))
	for class, cfg := range configs {
		copied[class] = cfg
	}
	return &RateLimitService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		configs: copied,
	}
}

func storeKey(class models.RateLimitClass, key string) string {
	return rateLimitKeyPrefix + ":" + string(class) + ":" + key
}

// TryConsume adds points to the class window for key and reports whether the
// window still had room. The counter is charged even when the result is a
// denial.
func (s *RateLimitService) TryConsume(ctx context.Context, class models.RateLimitClass, key string, points int64, role models.Role) (*models.RateLimitResult, error) {
	cfg, err := s.Config(class)
	if err != nil {
		return nil, err
	}
	if points < 1 {
		points = 1
	}

	// Counter writes complete even if the caller goes away.
	storeCtx := context.WithoutCancel(ctx)
	fullKey := storeKey(class, key)

	count, err := s.store.IncrementWithExpiry(storeCtx, fullKey, points, cfg.Window())
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"class": class,
			"key":   key,
		}).WithError(err).Warn("Rate limit store unavailable, allowing request")
		s.metrics.StoreError(ctx, "rate_limit")
		return &models.RateLimitResult{Allowed: true, Remaining: failOpenRemaining}, nil
	}

	remaining := cfg.Points - count
	if remaining >= 0 {
		return &models.RateLimitResult{Allowed: true, Remaining: remaining}, nil
	}

	retryAfter := cfg.Block()
	if ttl, ok, err := s.store.TTL(storeCtx, fullKey); err == nil && ok {
		retryAfter = ttl
	}

	s.metrics.RateLimitHit(ctx, class, role)
	s.logger.WithFields(logrus.Fields{
		"class":       class,
		"key":         key,
		"count":       count,
		"retry_after": retryAfter.String(),
	}).Debug("Rate limit exceeded")

	return &models.RateLimitResult{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
}

// TryConsumeAll runs checks in order and stops at the first denial, leaving
// later classes uncharged.
func (s *RateLimitService) TryConsumeAll(ctx context.Context, checks []models.RateLimitCheck, role models.Role) (*models.MultiRateLimitResult, error) {
	for _, check := range checks {
		result, err := s.TryConsume(ctx, check.Class, check.Key, check.Points, role)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			return &models.MultiRateLimitResult{
				Allowed:      false,
				BlockedClass: check.Class,
				RetryAfter:   result.RetryAfter,
			}, nil
		}
	}
	return &models.MultiRateLimitResult{Allowed: true}, nil
}

// CanonicalChecks returns the admission order for an event: global, user,
// chat, then the command when there is one.
func CanonicalChecks(userID, chatID int64, command string) []models.RateLimitCheck {
	checks := []models.RateLimitCheck{
		{Class: models.RateLimitGlobal, Key: GlobalKey(), Points: 1},
		{Class: models.RateLimitPerUser, Key: UserKey(userID), Points: 1},
		{Class: models.RateLimitPerChat, Key: ChatKey(chatID), Points: 1},
	}
	if command != "" {
		checks = append(checks, models.RateLimitCheck{Class: models.RateLimitPerCommand, Key: CommandKey(command), Points: 1})
	}
	return checks
}

func (s *RateLimitService) Reset(ctx context.Context, class models.RateLimitClass, key string) error {
	if !class.Valid() {
		return errors.NewValidationError(fmt.Sprintf("unknown rate limit class %q", class))
	}
	if err := s.store.Delete(context.WithoutCancel(ctx), storeKey(class, key)); err != nil {
		s.metrics.StoreError(ctx, "rate_limit")
		return errors.NewTemporaryError(err, "Failed to reset rate limit")
	}

	s.logger.WithFields(logrus.Fields{"class": class, "key": key}).Info("Rate limit reset")
	return nil
}

// Status reads a window without charging it.
func (s *RateLimitService) Status(ctx context.Context, class models.RateLimitClass, key string) (*models.RateLimitStatus, error) {
	cfg, err := s.Config(class)
	if err != nil {
		return nil, err
	}

	fullKey := storeKey(class, key)
	count, err := s.store.Get(ctx, fullKey)
	if err != nil {
		s.metrics.StoreError(ctx, "rate_limit")
		return nil, errors.NewTemporaryError(err, "Failed to read rate limit")
	}

	var resetIn time.Duration
	if ttl, ok, err := s.store.TTL(ctx, fullKey); err == nil && ok {
		resetIn = ttl
	}

	remaining := cfg.Points - count
	if remaining < 0 {
		remaining = 0
	}

	return &models.RateLimitStatus{
		Class:     class,
		Key:       key,
		Count:     count,
		Remaining: remaining,
		ResetIn:   int64(resetIn.Seconds()),
	}, nil
}

func (s *RateLimitService) Config(class models.RateLimitClass) (models.RateLimitConfig, error) {
	s.mu.RLock()
	cfg, ok := s.configs[class]
	s.mu.RUnlock()
	if !ok {
		return models.RateLimitConfig{}, errors.NewValidationError(fmt.Sprintf("unknown rate limit class %q", class))
	}
	return cfg, nil
}

func (s *RateLimitService) Configs() map[models.RateLimitClass]models.RateLimitConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[models.RateLimitClass]models.RateLimitConfig, len(s.configs))
	for class, cfg := range s.configs {
		copied[class] = cfg
	}
	return copied
}

// UpdateConfig overrides a class budget at runtime. Zero fields keep their
// current value. Existing windows keep the TTL they were created with.
func (s *RateLimitService) UpdateConfig(class models.RateLimitClass, update models.RateLimitConfig) (models.RateLimitConfig, error) {
	if !class.Valid() {
		return models.RateLimitConfig{}, errors.NewValidationError(fmt.Sprintf("unknown rate limit class %q", class))
	}
	if update.Points < 0 || update.Duration < 0 || update.BlockDuration < 0 {
		return models.RateLimitConfig{}, errors.NewValidationError("rate limit values must not be negative")
	}

	s.mu.Lock()
	cfg := s.configs[class]
	if update.Points > 0 {
		cfg.Points = update.Points
	}
	if update.Duration > 0 {
		cfg.Duration = update.Duration
	}
	if update.BlockDuration > 0 {
		cfg.BlockDuration = update.BlockDuration
	}
	s.configs[class] = cfg
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"class":          class,
		"points":         cfg.Points,
		"duration":       cfg.Duration,
		"block_duration": cfg.BlockDuration,
	}).Info("Rate limit config updated")

	return cfg, nil
}

func (s *RateLimitService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
