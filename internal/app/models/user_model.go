package models

import "time"

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username   string    `gorm:"type:varchar(64)" json:"username"`
	FirstName  string    `gorm:"type:varchar(128)" json:"first_name"`
	Role       Role      `gorm:"type:varchar(16);not null;default:user" json:"role"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type UserRoleUpdateRequest struct {
	Role Role `json:"role" validate:"required,oneof=user admin owner"`
}

// UserDetail is the admin view of a user and today's quota usage.
type UserDetail struct {
	User  *User                    `json:"user"`
	Quota map[QuotaType]QuotaUsage `json:"quota"`
}
