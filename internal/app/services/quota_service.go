package services

import (
	"context"
	"fmt"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/observability"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/safatanc/hypergiga-core/pkg/resilience"
	"github.com/sirupsen/logrus"
)

// QuotaStoreBreaker names the circuit guarding ledger calls.
const QuotaStoreBreaker = "quota_store"

var roleMultipliers = map[models.Role]int64{
	models.RoleUser:  1,
	models.RoleAdmin: 2,
	models.RoleOwner: 5,
}

// QuotaService keeps the daily per-user ledger. Epochs end at UTC midnight;
// rows from a finished epoch read as zero until the next write or sweep
// restarts them.
type QuotaService struct {
	store    stores.QuotaStore
	breakers *resilience.Breakers
	defaults models.DefaultQuotas
	metrics  observability.Metrics
	logger   *logrus.Logger
	now      func() time.Time
}

func NewQuotaService(store stores.QuotaStore, defaults models.DefaultQuotas, breakers *resilience.Breakers, metrics observability.Metrics, logger *logrus.Logger) *QuotaService {
	return &QuotaService{
		store:    store,
		breakers: breakers,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// GetQuotaLimits returns the role's daily limits, before any admin bonus.
func (s *QuotaService) GetQuotaLimits(role models.Role) map[models.QuotaType]int64 {
	multiplier, ok := roleMultipliers[role]
	if !ok {
		multiplier = 1
	}

	limits := make(map[models.QuotaType]int64, len(models.QuotaTypes))
	for quotaType, base := range s.defaults.Map() {
		limits[quotaType] = base * multiplier
	}
	return limits
}

// ledger runs a store call behind the quota circuit. Store calls are not
// cancelled with the caller so an accepted write is always recorded.
func (s *QuotaService) ledger(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := s.breakers.Execute(context.WithoutCancel(ctx), QuotaStoreBreaker, fn)
	if err == nil {
		return nil
	}

	s.metrics.StoreError(ctx, "quota")
	s.logger.WithField("operation", op).WithError(err).Error("Quota store call failed")
	return errors.NewTemporaryError(err, "Quota store unavailable")
}

type liveUsage struct {
	used  map[models.QuotaType]int64
	bonus map[models.QuotaType]int64
}

func (s *QuotaService) readLive(ctx context.Context, userID int64, now time.Time) (*liveUsage, error) {
	var rows []models.Quota
	err := s.ledger(ctx, "read_usage", func(ctx context.Context) error {
		var err error
		rows, err = s.store.ReadUsage(ctx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	usage := &liveUsage{
		used:  make(map[models.QuotaType]int64, len(models.QuotaTypes)),
		bonus: make(map[models.QuotaType]int64, len(models.QuotaTypes)),
	}
	for _, quotaType := range models.QuotaTypes {
		usage.used[quotaType] = 0
		usage.bonus[quotaType] = 0
	}
	for _, row := range rows {
		usage.used[row.QuotaType] = row.Used
		usage.bonus[row.QuotaType] = row.Bonus
	}
	return usage, nil
}

// GetCurrentUsage returns today's usage per quota type.
func (s *QuotaService) GetCurrentUsage(ctx context.Context, userID int64) (map[models.QuotaType]int64, error) {
	usage, err := s.readLive(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	return usage.used, nil
}

func (s *QuotaService) GetUserQuota(ctx context.Context, userID int64, role models.Role) (*models.UserQuota, error) {
	now := s.now()
	usage, err := s.readLive(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	limits := s.GetQuotaLimits(role)
	for quotaType, bonus := range usage.bonus {
		limits[quotaType] += bonus
	}

	return &models.UserQuota{
		Daily:     usage.used,
		Limits:    limits,
		ResetTime: pkg.NextUTCMidnight(now),
	}, nil
}

func (s *QuotaService) check(ctx context.Context, userID int64, quotaType models.QuotaType, role models.Role, now time.Time) (*models.QuotaCheck, error) {
	if !quotaType.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown quota type %q", quotaType))
	}

	usage, err := s.readLive(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	limit := s.GetQuotaLimits(role)[quotaType] + usage.bonus[quotaType]
	remaining := limit - usage.used[quotaType]
	if remaining < 0 {
		remaining = 0
	}

	return &models.QuotaCheck{
		Allowed:   remaining > 0,
		Remaining: remaining,
		ResetTime: pkg.NextUTCMidnight(now),
	}, nil
}

func (s *QuotaService) CheckQuota(ctx context.Context, userID int64, quotaType models.QuotaType, role models.Role) (*models.QuotaCheck, error) {
	result, err := s.check(ctx, userID, quotaType, role, s.now())
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		s.metrics.QuotaDenied(ctx, quotaType, role)
	}
	return result, nil
}

// ConsumeQuota admits amount units against today's limit and records them.
// The admission read and the increment are separate round trips, so racing
// callers may overrun the limit by a few units; the increment itself is
// atomic and never loses a concurrent write.
func (s *QuotaService) ConsumeQuota(ctx context.Context, userID int64, quotaType models.QuotaType, amount int64, role models.Role) error {
	if amount < 1 {
		return errors.NewValidationError("quota amount must be positive")
	}

	now := s.now()
	result, err := s.check(ctx, userID, quotaType, role, now)
	if err != nil {
		return err
	}

	if result.Remaining < amount {
		s.metrics.QuotaDenied(ctx, quotaType, role)
		s.logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"quota_type": quotaType,
			"remaining":  result.Remaining,
			"amount":     amount,
		}).Debug("Quota exceeded")
		return errors.NewQuotaError(result.ResetTime)
	}

	limit := s.GetQuotaLimits(role)[quotaType]
	return s.ledger(ctx, "upsert_increment", func(ctx context.Context) error {
		return s.store.UpsertIncrement(ctx, userID, quotaType, amount, limit, result.ResetTime, now)
	})
}

func (s *QuotaService) GetUserQuotaUsage(ctx context.Context, userID int64, role models.Role) (map[models.QuotaType]models.QuotaUsage, error) {
	quota, err := s.GetUserQuota(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	usage := make(map[models.QuotaType]models.QuotaUsage, len(models.QuotaTypes))
	for _, quotaType := range models.QuotaTypes {
		used := quota.Daily[quotaType]
		limit := quota.Limits[quotaType]
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		usage[quotaType] = models.QuotaUsage{
			Used:       used,
			Limit:      limit,
			Remaining:  remaining,
			Percentage: pkg.Percentage(used, limit),
		}
	}
	return usage, nil
}

func (s *QuotaService) GetQuotaStats(ctx context.Context) (*models.QuotaStats, error) {
	now := s.now()
	stats := &models.QuotaStats{}

	err := s.ledger(ctx, "stats", func(ctx context.Context) error {
		var err error
		if stats.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
			return err
		}
		if stats.ActiveUsers, err = s.store.CountActive(ctx, now); err != nil {
			return err
		}
		stats.Exhaustions, err = s.store.CountExhausted(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// IncreaseUserQuota grants amount extra units of quotaType until the next
// reset. Callers must authorize the request.
func (s *QuotaService) IncreaseUserQuota(ctx context.Context, userID int64, quotaType models.QuotaType, amount int64) error {
	if !quotaType.Valid() {
		return errors.NewValidationError(fmt.Sprintf("unknown quota type %q", quotaType))
	}
	if amount < 1 {
		return errors.NewValidationError("quota amount must be positive")
	}

	now := s.now()
	limit := s.GetQuotaLimits(models.RoleUser)[quotaType]
	err := s.ledger(ctx, "increase_limit", func(ctx context.Context) error {
		return s.store.IncreaseLimit(ctx, userID, quotaType, amount, limit, pkg.NextUTCMidnight(now), now)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"quota_type": quotaType,
		"amount":     amount,
	}).Info("Quota increased")
	return nil
}

// ResetUserQuota zeroes today's usage of one quota type, or of every type
// when quotaType is empty. Callers must authorize the request.
func (s *QuotaService) ResetUserQuota(ctx context.Context, userID int64, quotaType models.QuotaType) error {
	var target *models.QuotaType
	if quotaType != "" {
		if !quotaType.Valid() {
			return errors.NewValidationError(fmt.Sprintf("unknown quota type %q", quotaType))
		}
		target = &quotaType
	}

	now := s.now()
	err := s.ledger(ctx, "reset_usage", func(ctx context.Context) error {
		return s.store.ResetUsage(ctx, userID, target, pkg.NextUTCMidnight(now), now)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"quota_type": quotaType,
	}).Info("Quota reset")
	return nil
}

// ResetExpired moves every finished epoch forward to the next UTC midnight.
func (s *QuotaService) ResetExpired(ctx context.Context) (int64, error) {
	next := pkg.NextUTCMidnight(s.now())

	var swept int64
	err := s.ledger(ctx, "sweep_forward", func(ctx context.Context) error {
		var err error
		swept, err = s.store.SweepForward(ctx, next)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"rows":     swept,
		"reset_at": next,
	}).Info("Daily quotas reset")
	return swept, nil
}

// StartResetScheduler sweeps at every UTC midnight until ctx is cancelled.
// A failed sweep is logged and retried at the next midnight; reads stay
// correct in the meantime because stale rows read as zero.
func (s *QuotaService) StartResetScheduler(ctx context.Context) error {
	timer := time.NewTimer(pkg.NextUTCMidnight(s.now()).Sub(s.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if _, err := s.ResetExpired(ctx); err != nil {
				s.logger.WithError(err).Warn("Scheduled quota reset failed")
			}
			timer.Reset(pkg.NextUTCMidnight(s.now()).Sub(s.now()))
		}
	}
}

// BreakerState reports the quota store circuit for readiness checks.
func (s *QuotaService) BreakerState() resilience.State {
	return s.breakers.State(QuotaStoreBreaker)
}
