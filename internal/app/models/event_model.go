package models

import "time"

// Event is one inbound chat message as handed over by the transport.
type Event struct {
	UpdateID   int64     `json:"update_id"`
	Text       string    `json:"text" validate:"max=4096"`
	FromID     int64     `json:"from_id" validate:"required"`
	ChatID     int64     `json:"chat_id" validate:"required"`
	Role       Role      `json:"role" validate:"omitempty,oneof=user admin owner"`
	Username   string    `json:"username,omitempty" validate:"max=64"`
	FirstName  string    `json:"first_name,omitempty" validate:"max=128"`
	ReceivedAt time.Time `json:"received_at"`
}

// Reply is one outbound message.
type Reply struct {
	Text      string         `json:"text"`
	ParseMode string         `json:"parse_mode,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

const ParseModeHTML = "HTML"
