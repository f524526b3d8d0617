package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuotaType string

const (
	QuotaCommands         QuotaType = "commands"
	QuotaDownloads        QuotaType = "downloads"
	QuotaAIRequests       QuotaType = "ai_requests"
	QuotaMediaConversions QuotaType = "media_conversions"
)

var QuotaTypes = []QuotaType{
	QuotaCommands,
	QuotaDownloads,
	QuotaAIRequests,
	QuotaMediaConversions,
}

func (q QuotaType) Valid() bool {
	switch q {
	case QuotaCommands, QuotaDownloads, QuotaAIRequests, QuotaMediaConversions:
		return true
	default:
		return false
	}
}

// Quota is one ledger row: a user's usage of one quota type within the
// epoch ending at ResetAt. LimitValue is the role limit at the last write;
// Bonus is an administrative increase valid for the same epoch.
type Quota struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_quotas_user_type" json:"user_id"`
	QuotaType  QuotaType `gorm:"type:varchar(32);not null;uniqueIndex:idx_quotas_user_type" json:"quota_type"`
	Used       int64     `gorm:"not null;default:0" json:"used"`
	LimitValue int64     `gorm:"not null" json:"limit_value"`
	Bonus      int64     `gorm:"not null;default:0" json:"bonus"`
	ResetAt    time.Time `gorm:"not null;index" json:"reset_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Quota) TableName() string {
	return "quotas"
}

// DefaultQuotas is the base daily limit per quota type before role multipliers.
type DefaultQuotas struct {
	DailyCommands         int64 `json:"daily_commands" yaml:"daily_commands" validate:"min=1"`
	DailyDownloads        int64 `json:"daily_downloads" yaml:"daily_downloads" validate:"min=1"`
	DailyAIRequests       int64 `json:"daily_ai_requests" yaml:"daily_ai_requests" validate:"min=1"`
	DailyMediaConversions int64 `json:"daily_media_conversions" yaml:"daily_media_conversions" validate:"min=1"`
}

func (d DefaultQuotas) Map() map[QuotaType]int64 {
	return map[QuotaType]int64{
		QuotaCommands:         d.DailyCommands,
		QuotaDownloads:        d.DailyDownloads,
		QuotaAIRequests:       d.DailyAIRequests,
		QuotaMediaConversions: d.DailyMediaConversions,
	}
}

type UserQuota struct {
	Daily     map[QuotaType]int64 `json:"daily"`
	Limits    map[QuotaType]int64 `json:"limits"`
	ResetTime time.Time           `json:"reset_time"`
}

type QuotaCheck struct {
	Allowed   bool      `json:"allowed"`
	Remaining int64     `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

type QuotaUsage struct {
	Used       int64           `json:"used"`
	Limit      int64           `json:"limit"`
	Remaining  int64           `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
}

type QuotaStats struct {
	TotalUsers  int64               `json:"total_users"`
	ActiveUsers int64               `json:"active_users"`
	Exhaustions map[QuotaType]int64 `json:"exhaustions"`
}

type QuotaResetRequest struct {
	QuotaType QuotaType `json:"quota_type" validate:"omitempty,oneof=commands downloads ai_requests media_conversions"`
}

type QuotaIncreaseRequest struct {
	QuotaType QuotaType `json:"quota_type" validate:"required,oneof=commands downloads ai_requests media_conversions"`
	Amount    int64     `json:"amount" validate:"required,min=1"`
}
