package models

import "time"

type RateLimitClass string

const (
	RateLimitGlobal     RateLimitClass = "global"
	RateLimitPerUser    RateLimitClass = "per_user"
	RateLimitPerCommand RateLimitClass = "per_command"
	RateLimitPerChat    RateLimitClass = "per_chat"
)

var RateLimitClasses = []RateLimitClass{
	RateLimitGlobal,
	RateLimitPerUser,
	RateLimitPerCommand,
	RateLimitPerChat,
}

func (c RateLimitClass) Valid() bool {
	switch c {
	case RateLimitGlobal, RateLimitPerUser, RateLimitPerCommand, RateLimitPerChat:
		return true
	default:
		return false
	}
}

// RateLimitConfig is a class budget. Durations are in seconds.
type RateLimitConfig struct {
	Points        int64 `json:"points" yaml:"points" validate:"min=1"`
	Duration      int64 `json:"duration" yaml:"duration" validate:"min=1"`
	BlockDuration int64 `json:"block_duration" yaml:"block_duration" validate:"min=0"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.Duration) * time.Second
}

func (c RateLimitConfig) Block() time.Duration {
	return time.Duration(c.BlockDuration) * time.Second
}

type RateLimitCheck struct {
	Class  RateLimitClass
	Key    string
	Points int64
}

type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

type MultiRateLimitResult struct {
	Allowed      bool           `json:"allowed"`
	BlockedClass RateLimitClass `json:"blocked_class,omitempty"`
	RetryAfter   time.Duration  `json:"retry_after"`
}

type RateLimitStatus struct {
	Class     RateLimitClass `json:"class"`
	Key       string         `json:"key"`
	Count     int64          `json:"count"`
	Remaining int64          `json:"remaining"`
	ResetIn   int64          `json:"reset_in"`
}

type RateLimitResetRequest struct {
	Class RateLimitClass `json:"class" validate:"required,oneof=global per_user per_command per_chat"`
	Key   string         `json:"key" validate:"required"`
}
