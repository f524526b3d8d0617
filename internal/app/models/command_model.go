package models

type CommandCategory string

const (
	CategoryCore      CommandCategory = "core"
	CategoryMedia     CommandCategory = "media"
	CategoryAI        CommandCategory = "ai"
	CategoryStickers  CommandCategory = "stickers"
	CategoryUtilities CommandCategory = "utilities"
	CategoryGames     CommandCategory = "games"
	CategoryAdmin     CommandCategory = "admin"
)

// CommandCategories lists categories in catalog load order.
var CommandCategories = []CommandCategory{
	CategoryCore,
	CategoryMedia,
	CategoryAI,
	CategoryStickers,
	CategoryUtilities,
	CategoryGames,
	CategoryAdmin,
}

func (c CommandCategory) Valid() bool {
	for _, known := range CommandCategories {
		if c == known {
			return true
		}
	}
	return false
}

type CommandMetadata struct {
	Name        string          `json:"name"`
	Aliases     []string        `json:"aliases"`
	Category    CommandCategory `json:"category"`
	Description string          `json:"description"`
	Usage       string          `json:"usage"`
	Examples    []string        `json:"examples"`
	// Cooldown is advisory, in seconds. The per_command rate-limit class is
	// what actually spaces invocations.
	Cooldown int    `json:"cooldown"`
	Roles    []Role `json:"roles"`
	Hidden   bool   `json:"hidden"`
}

func (m CommandMetadata) Allows(role Role) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
