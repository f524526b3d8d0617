package stores

import (
	"context"
	"sync"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

type quotaKey struct {
	userID    int64
	quotaType models.QuotaType
}

// MemoryStore is an in-process RelationalStore with the same row semantics as
// GormStore. It backs STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu     sync.Mutex
	quotas map[quotaKey]*models.Quota
	users  map[int64]*models.User
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quotas: make(map[quotaKey]*models.Quota),
		users:  make(map[int64]*models.User),
		now:    time.Now,
	}
}

// Seed inserts or replaces a ledger row verbatim.
func (s *MemoryStore) Seed(row models.Quota) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := row
	s.quotas[quotaKey{row.UserID, row.QuotaType}] = &copied
}

// Row returns a copy of the stored ledger row, live or not.
func (s *MemoryStore) Row(userID int64, quotaType models.QuotaType) (models.Quota, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.quotas[quotaKey{userID, quotaType}]
	if !ok {
		return models.Quota{}, false
	}
	return *row, true
}

func (s *MemoryStore) ReadUsage(_ context.Context, userID int64, now time.Time) ([]models.Quota, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []models.Quota
	for key, row := range s.quotas {
		if key.userID == userID && row.ResetAt.After(now) {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (s *MemoryStore) UpsertIncrement(_ context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := quotaKey{userID, quotaType}
	row, ok := s.quotas[key]
	if !ok {
		s.quotas[key] = &models.Quota{
			UserID:     userID,
			QuotaType:  quotaType,
			Used:       amount,
			LimitValue: limitValue,
			ResetAt:    resetAt,
			CreatedAt:  s.now(),
			UpdatedAt:  now,
		}
		return nil
	}

	if !row.ResetAt.After(now) {
		row.Used = amount
		row.Bonus = 0
		row.ResetAt = resetAt
	} else {
		row.Used += amount
	}
	row.LimitValue = limitValue
	row.UpdatedAt = now
	return nil
}

func (s *MemoryStore) IncreaseLimit(_ context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := quotaKey{userID, quotaType}
	row, ok := s.quotas[key]
	if !ok || !row.ResetAt.After(now) {
		s.quotas[key] = &models.Quota{
			UserID:     userID,
			QuotaType:  quotaType,
			LimitValue: limitValue,
			Bonus:      amount,
			ResetAt:    resetAt,
			CreatedAt:  s.now(),
			UpdatedAt:  now,
		}
		return nil
	}

	row.Bonus += amount
	row.UpdatedAt = now
	return nil
}

func (s *MemoryStore) ResetUsage(_ context.Context, userID int64, quotaType *models.QuotaType, resetAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, row := range s.quotas {
		if key.userID != userID || (quotaType != nil && key.quotaType != *quotaType) {
			continue
		}
		if !row.ResetAt.After(now) {
			row.Bonus = 0
		}
		row.Used = 0
		row.ResetAt = resetAt
		row.UpdatedAt = now
	}
	return nil
}

func (s *MemoryStore) SweepForward(_ context.Context, newResetAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var swept int64
	for _, row := range s.quotas {
		if row.ResetAt.Before(newResetAt) {
			row.Used = 0
			row.Bonus = 0
			row.ResetAt = newResetAt
			row.UpdatedAt = s.now()
			swept++
		}
	}
	return swept, nil
}

func (s *MemoryStore) CountUsers(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) CountActive(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[int64]struct{})
	for key, row := range s.quotas {
		if row.ResetAt.After(now) {
			active[key.userID] = struct{}{}
		}
	}
	return int64(len(active)), nil
}

func (s *MemoryStore) CountExhausted(_ context.Context, now time.Time) (map[models.QuotaType]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exhausted := make(map[models.QuotaType]int64, len(models.QuotaTypes))
	for _, quotaType := range models.QuotaTypes {
		exhausted[quotaType] = 0
	}
	for key, row := range s.quotas {
		if row.ResetAt.After(now) && row.Used >= row.LimitValue+row.Bonus {
			exhausted[key.quotaType]++
		}
	}
	return exhausted, nil
}

func (s *MemoryStore) TouchUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored, ok := s.users[user.ID]
	if !ok {
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		user.JoinedAt = now
		user.LastSeenAt = now
		user.UpdatedAt = now
		s.users[user.ID] = &user
		copied := user
		return &copied, nil
	}

	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.LastSeenAt = now
	stored.UpdatedAt = now
	copied := *stored
	return &copied, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) SetRole(_ context.Context, id int64, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
