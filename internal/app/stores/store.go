// Package stores holds the relational collaborators of the admission layer:
// the per-user quota ledger and the user directory.
package stores

import (
	"context"
	"errors"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

var ErrUserNotFound = errors.New("user not found")

// QuotaStore is the quota ledger. A row is live while its reset_at is after
// the supplied now; stale rows are invisible to reads and are restarted by
// the next write.
type QuotaStore interface {
	// ReadUsage returns the live ledger rows of a user.
	ReadUsage(ctx context.Context, userID int64, now time.Time) ([]models.Quota, error)
	// UpsertIncrement adds amount to used in one statement, creating the row
	// with limitValue and resetAt when absent or stale.
	UpsertIncrement(ctx context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error
	// IncreaseLimit grants amount extra units for the current epoch.
	IncreaseLimit(ctx context.Context, userID int64, quotaType models.QuotaType, amount, limitValue int64, resetAt, now time.Time) error
	// ResetUsage zeroes used for one quota type, or all when quotaType is nil.
	ResetUsage(ctx context.Context, userID int64, quotaType *models.QuotaType, resetAt, now time.Time) error
	// SweepForward restarts every row whose reset_at is before newResetAt.
	SweepForward(ctx context.Context, newResetAt time.Time) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
	CountExhausted(ctx context.Context, now time.Time) (map[models.QuotaType]int64, error)
}

// UserStore is the user directory.
type UserStore interface {
	// TouchUser records a sighting of user, creating the row on first contact.
	// The stored row, including role and join date, is returned.
	TouchUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetRole(ctx context.Context, id int64, role models.Role) error
}

// RelationalStore is everything the application keeps in its database.
type RelationalStore interface {
	QuotaStore
	UserStore
	Ping(ctx context.Context) error
}
