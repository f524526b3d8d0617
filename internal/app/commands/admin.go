package commands

import "github.com/safatanc/hypergiga-core/internal/app/models"

func AdminCommands(_ *Registry, _ *Deps) []Command {
	staff := func(meta models.CommandMetadata) models.CommandMetadata {
		meta.Roles = models.StaffRoles
		return meta
	}

	return []Command{
		replyCommand(staff(models.CommandMetadata{
			Name:        "mod",
			Aliases:     []string{"moderation"},
			Description: "Moderation settings",
			Usage:       "/mod <on|off|rules>",
			Examples:    []string{"/mod on", "/mod rules"},
			Cooldown:    10,
		}), models.CategoryAdmin, 0, "🛡️ Moderation enabled!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "warn",
			Aliases:     []string{"warning"},
			Description: "Warn a user",
			Usage:       "/warn @user [reason]",
			Examples:    []string{"/warn @username", "/warn @username Spam"},
			Cooldown:    10,
		}), models.CategoryAdmin, 1, "⚠️ Warning issued!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "mute",
			Aliases:     []string{"silence"},
			Description: "Mute a user",
			Usage:       "/mute @user <duration> [reason]",
			Examples:    []string{"/mute @username 10m", "/mute @username 1h Spam"},
			Cooldown:    10,
		}), models.CategoryAdmin, 2, "🔇 User muted!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "ban",
			Aliases:     []string{"block"},
			Description: "Ban a user",
			Usage:       "/ban @user [reason]",
			Examples:    []string{"/ban @username", "/ban @username Repeated violations"},
			Cooldown:    10,
		}), models.CategoryAdmin, 1, "🚫 User banned!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "purge",
			Aliases:     []string{"clear"},
			Description: "Delete messages",
			Usage:       "/purge [count]",
			Examples:    []string{"/purge", "/purge 10"},
			Cooldown:    30,
		}), models.CategoryAdmin, 0, "🗑️ Messages deleted!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "slowmode",
			Aliases:     []string{"slow"},
			Description: "Set slow mode",
			Usage:       "/slowmode [seconds]",
			Examples:    []string{"/slowmode 10", "/slowmode 0"},
			Cooldown:    10,
		}), models.CategoryAdmin, 0, "🐌 Slow mode set!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "welcome",
			Aliases:     []string{"greet"},
			Description: "Welcome message settings",
			Usage:       "/welcome <on|off> [message]",
			Examples:    []string{"/welcome on", "/welcome on Welcome to our group!"},
			Cooldown:    10,
		}), models.CategoryAdmin, 1, "👋 Welcome message enabled!"),
		replyCommand(staff(models.CommandMetadata{
			Name:        "goodbye",
			Aliases:     []string{"farewell"},
			Description: "Goodbye message settings",
			Usage:       "/goodbye <on|off> [message]",
			Examples:    []string{"/goodbye on", "/goodbye on Thanks for visiting!"},
			Cooldown:    10,
		}), models.CategoryAdmin, 1, "👋 Goodbye message enabled!"),
	}
}
