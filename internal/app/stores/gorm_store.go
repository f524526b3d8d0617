package stores

import (
	"context"
	"errors"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const staleRow = "quotas.reset_at <= ?"

// GormStore implements RelationalStore on PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the ledger and user tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Quota{})
}

func (s *GormStore) ReadUsage(ctx context.Context, userID int64, now time.Time) ([]models.Quota, error) {
	var rows []models.Quota
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND reset_at > ?", userID, now).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) UpsertIncrement(ctx context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error {
	row := models.Quota{
		UserID:     userID,
		QuotaType:  quotaType,
		Used:       amount,
		LimitValue: limitValue,
		ResetAt:    resetAt,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "quota_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"used":        gorm.Expr("CASE WHEN "+staleRow+" THEN EXCLUDED.used ELSE quotas.used + EXCLUDED.used END", now),
			"bonus":       gorm.Expr("CASE WHEN "+staleRow+" THEN 0 ELSE quotas.bonus END", now),
			"reset_at":    gorm.Expr("CASE WHEN "+staleRow+" THEN EXCLUDED.reset_at ELSE quotas.reset_at END", now),
			"limit_value": gorm.Expr("EXCLUDED.limit_value"),
			"updated_at":  now,
		}),
	}).Create(&row).Error
}

func (s *GormStore) IncreaseLimit(ctx context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error {
	row := models.Quota{
		UserID:     userID,
		QuotaType:  quotaType,
		LimitValue: limitValue,
		Bonus:      amount,
		ResetAt:    resetAt,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "quota_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"bonus":       gorm.Expr("CASE WHEN "+staleRow+" THEN EXCLUDED.bonus ELSE quotas.bonus + EXCLUDED.bonus END", now),
			"used":        gorm.Expr("CASE WHEN "+staleRow+" THEN 0 ELSE quotas.used END", now),
			"limit_value": gorm.Expr("CASE WHEN "+staleRow+" THEN EXCLUDED.limit_value ELSE quotas.limit_value END", now),
			"reset_at":    gorm.Expr("CASE WHEN "+staleRow+" THEN EXCLUDED.reset_at ELSE quotas.reset_at END", now),
			"updated_at":  now,
		}),
	}).Create(&row).Error
}

func (s *GormStore) ResetUsage(ctx context.Context, userID int64, quotaType *models.QuotaType, resetAt, now time.Time) error {
	query := s.db.WithContext(ctx).Model(&models.Quota{}).Where("user_id = ?", userID)
	if quotaType != nil {
		query = query.Where("quota_type = ?", *quotaType)
	}

	return query.Updates(map[string]any{
		"used":       0,
		"bonus":      gorm.Expr("CASE WHEN reset_at <= ? THEN 0 ELSE bonus END", now),
		"reset_at":   resetAt,
		"updated_at": now,
	}).Error
}

func (s *GormStore) SweepForward(ctx context.Context, newResetAt time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Quota{}).
		Where("reset_at < ?", newResetAt).
		Updates(map[string]any{
			"used":       0,
			"bonus":      0,
			"reset_at":   newResetAt,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *GormStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Quota{}).
		Where("reset_at > ?", now).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (s *GormStore) CountExhausted(ctx context.Context, now time.Time) (map[models.QuotaType]int64, error) {
	var rows []struct {
		QuotaType models.QuotaType
		Count     int64
	}
	err := s.db.WithContext(ctx).Model(&models.Quota{}).
		Select("quota_type, COUNT(*) AS count").
		Where("reset_at > ? AND used >= limit_value + bonus", now).
		Group("quota_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	exhausted := make(map[models.QuotaType]int64, len(models.QuotaTypes))
	for _, quotaType := range models.QuotaTypes {
		exhausted[quotaType] = 0
	}
	for _, row := range rows {
		exhausted[row.QuotaType] = row.Count
	}
	return exhausted, nil
}

func (s *GormStore) TouchUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.LastSeenAt = time.Now()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_seen_at", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}

	return s.GetUser(ctx, user.ID)
}

func (s *GormStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) SetRole(ctx context.Context, id int64, role models.Role) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
