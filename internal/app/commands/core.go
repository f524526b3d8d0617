package commands

import (
	"context"
	"fmt"
	"html"
	"runtime"
	"strings"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
)

var categoryTitles = map[models.CommandCategory]string{
	models.CategoryCore:      "🔧 <b>Core</b>",
	models.CategoryMedia:     "📥 <b>Media</b>",
	models.CategoryAI:        "🤖 <b>AI</b>",
	models.CategoryStickers:  "🎨 <b>Stickers</b>",
	models.CategoryUtilities: "🔧 <b>Utilities</b>",
	models.CategoryGames:     "🎮 <b>Games</b>",
	models.CategoryAdmin:     "👑 <b>Admin</b>",
}

func CoreCommands(r *Registry, deps *Deps) []Command {
	everyone := models.AllRoles
	return []Command{
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "start",
				Category:    models.CategoryCore,
				Description: "Start the bot and see welcome message",
				Usage:       "/start",
				Examples:    []string{"/start"},
				Roles:       everyone,
			},
			Handler: func(_ context.Context, c *Context) error {
				c.ReplyHTML(textWelcome)
				return nil
			},
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "help",
				Aliases:     []string{"h", "menu"},
				Category:    models.CategoryCore,
				Description: "Show help menu with all commands",
				Usage:       "/help [category|command]",
				Examples:    []string{"/help", "/help media", "/help download"},
				Cooldown:    5,
				Roles:       everyone,
			},
			Handler: helpHandler(r),
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "lang",
				Aliases:     []string{"language"},
				Category:    models.CategoryCore,
				Description: "Change bot language",
				Usage:       "/lang [en]",
				Examples:    []string{"/lang", "/lang en"},
				Cooldown:    10,
				Roles:       everyone,
			},
			Handler: langHandler,
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "me",
				Aliases:     []string{"profile"},
				Category:    models.CategoryCore,
				Description: "Show your profile and quota information",
				Usage:       "/me [quota]",
				Examples:    []string{"/me", "/me quota"},
				Cooldown:    5,
				Roles:       everyone,
			},
			Handler: meHandler(deps),
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "settings",
				Aliases:     []string{"config"},
				Category:    models.CategoryCore,
				Description: "Manage your settings",
				Usage:       "/settings",
				Examples:    []string{"/settings"},
				Cooldown:    5,
				Roles:       everyone,
			},
			Handler: func(_ context.Context, c *Context) error {
				c.ReplyHTML("⚙️ <b>Settings</b>\n\n" +
					"🌐 Language: EN\n" +
					"🔔 Notifications: OFF\n" +
					"🔒 Privacy: PRIVATE")
				return nil
			},
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "ping",
				Aliases:     []string{"pong"},
				Category:    models.CategoryCore,
				Description: "Check bot latency",
				Usage:       "/ping",
				Examples:    []string{"/ping"},
				Cooldown:    5,
				Roles:       everyone,
			},
			Handler: func(_ context.Context, c *Context) error {
				var latency int64
				if !c.Event.ReceivedAt.IsZero() {
					latency = deps.now().Sub(c.Event.ReceivedAt).Milliseconds()
				}
				if latency < 0 {
					latency = 0
				}
				c.ReplyHTML(fmt.Sprintf(textPing, latency))
				return nil
			},
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "uptime",
				Aliases:     []string{"status"},
				Category:    models.CategoryCore,
				Description: "Show bot uptime",
				Usage:       "/uptime",
				Examples:    []string{"/uptime"},
				Cooldown:    10,
				Roles:       everyone,
			},
			Handler: func(_ context.Context, c *Context) error {
				c.ReplyHTML(fmt.Sprintf(textUptime, pkg.FormatDuration(deps.now().Sub(deps.StartedAt))))
				return nil
			},
		},
		{
			CommandMetadata: models.CommandMetadata{
				Name:        "stats",
				Aliases:     []string{"statistics"},
				Category:    models.CategoryCore,
				Description: "Show bot statistics",
				Usage:       "/stats",
				Examples:    []string{"/stats"},
				Cooldown:    30,
				Roles:       models.StaffRoles,
			},
			Handler: statsHandler(deps),
		},
	}
}

func helpHandler(r *Registry) Handler {
	return func(_ context.Context, c *Context) error {
		switch len(c.Args) {
		case 0:
			c.ReplyHTML(mainHelp(r, c.Role))
			return nil
		case 1:
		default:
			return usageError(models.CommandMetadata{Name: "help"})
		}

		arg := strings.ToLower(c.Args[0])
		if category := models.CommandCategory(arg); category.Valid() {
			if category == models.CategoryAdmin && !c.Role.IsStaff() {
				return errors.NewPermissionError("admin help requested by non staff")
			}
			listed := r.GetByCategory(category)
			if len(listed) == 0 {
				c.Reply(fmt.Sprintf(textNotFound, arg))
				return nil
			}
			c.ReplyHTML(categoryHelp(category, listed))
			return nil
		}

		cmd, ok := r.Get(strings.TrimPrefix(arg, "/"))
		if !ok {
			c.Reply(fmt.Sprintf(textNotFound, arg))
			return nil
		}
		c.ReplyHTML(commandHelp(cmd.CommandMetadata))
		return nil
	}
}

func mainHelp(r *Registry, role models.Role) string {
	var b strings.Builder
	b.WriteString(textHelpTitle + "\n\n")
	for _, category := range r.GetCategories() {
		if category == models.CategoryAdmin && !role.IsStaff() {
			continue
		}
		b.WriteString(categoryTitles[category] + "\n")
	}
	b.WriteString("\n/help &lt;category&gt; to see commands in that category\n")
	b.WriteString("/help &lt;command&gt; to see detailed help for a command")
	return b.String()
}

func categoryHelp(category models.CommandCategory, listed []models.CommandMetadata) string {
	var b strings.Builder
	b.WriteString(categoryTitles[category] + "\n\n")
	for _, meta := range listed {
		fmt.Fprintf(&b, "• /%s - %s\n", meta.Name, meta.Description)
	}
	b.WriteString("\nUse /help &lt;command&gt; for detailed information")
	return b.String()
}

func commandHelp(meta models.CommandMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>/%s</b>\n\n%s\n\n", meta.Name, meta.Description)
	fmt.Fprintf(&b, "%s\n<code>%s</code>\n\n", textHelpUsage, html.EscapeString(meta.Usage))

	if len(meta.Examples) > 0 {
		b.WriteString(textHelpExamples + "\n")
		for _, example := range meta.Examples {
			fmt.Fprintf(&b, "<code>%s</code>\n", html.EscapeString(example))
		}
		b.WriteString("\n")
	}

	roles := make([]string, len(meta.Roles))
	for i, role := range meta.Roles {
		roles[i] = string(role)
	}
	fmt.Fprintf(&b, "%s %ds\n", textHelpCooldown, meta.Cooldown)
	fmt.Fprintf(&b, "%s %s", textHelpRoles, strings.Join(roles, ", "))

	if len(meta.Aliases) > 0 {
		aliases := make([]string, len(meta.Aliases))
		for i, alias := range meta.Aliases {
			aliases[i] = "/" + alias
		}
		fmt.Fprintf(&b, "\n<b>Aliases:</b> %s", strings.Join(aliases, ", "))
	}
	return b.String()
}

func langHandler(_ context.Context, c *Context) error {
	switch {
	case len(c.Args) == 0:
		c.ReplyHTML(fmt.Sprintf(textLangCurrent, "EN"))
	case len(c.Args) == 1 && strings.EqualFold(c.Args[0], "en"):
		c.Reply(fmt.Sprintf(textLangChanged, "EN"))
	default:
		return usageError(models.CommandMetadata{Name: "lang"})
	}
	return nil
}

func meHandler(deps *Deps) Handler {
	return func(ctx context.Context, c *Context) error {
		switch {
		case len(c.Args) == 0:
			c.ReplyHTML(profile(c))
			return nil
		case len(c.Args) == 1 && strings.EqualFold(c.Args[0], "quota"):
		default:
			return usageError(models.CommandMetadata{Name: "me"})
		}

		usage, err := deps.Quota.GetUserQuotaUsage(ctx, c.UserID(), c.Role)
		if err != nil {
			return err
		}
		quota, err := deps.Quota.GetUserQuota(ctx, c.UserID(), c.Role)
		if err != nil {
			return err
		}

		line := func(label string, u models.QuotaUsage) string {
			return fmt.Sprintf("%s %d/%d (%s%%)\n", label, u.Used, u.Limit, u.Percentage.String())
		}
		var b strings.Builder
		b.WriteString("📊 <b>Quota Usage</b>\n\n")
		b.WriteString(line("📝 <b>Commands:</b>", usage[models.QuotaCommands]))
		b.WriteString(line("📥 <b>Downloads:</b>", usage[models.QuotaDownloads]))
		b.WriteString(line("🤖 <b>AI Requests:</b>", usage[models.QuotaAIRequests]))
		b.WriteString(line("🎨 <b>Media Conversions:</b>", usage[models.QuotaMediaConversions]))
		fmt.Fprintf(&b, "\n🔄 <b>Reset:</b> %s", quota.ResetTime.UTC().Format(errors.ResetTimeLayout))
		c.ReplyHTML(b.String())
		return nil
	}
}

func profile(c *Context) string {
	username := "N/A"
	joined := "N/A"
	if c.User != nil {
		if c.User.Username != "" {
			username = "@" + c.User.Username
		}
		if !c.User.JoinedAt.IsZero() {
			joined = c.User.JoinedAt.UTC().Format("2006-01-02")
		}
	}
	return fmt.Sprintf("👤 <b>Profile</b>\n\n👤 <b>User:</b> %s\n👑 <b>Role:</b> %s\n📅 <b>Joined:</b> %s",
		username, strings.ToUpper(string(c.Role)), joined)
}

func statsHandler(deps *Deps) Handler {
	return func(ctx context.Context, c *Context) error {
		stats, err := deps.Quota.GetQuotaStats(ctx)
		if err != nil {
			return err
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		var b strings.Builder
		b.WriteString("📊 <b>Bot Statistics</b>\n\n")
		fmt.Fprintf(&b, "👥 <b>Total users:</b> %d\n", stats.TotalUsers)
		fmt.Fprintf(&b, "⏱️ <b>Uptime:</b> %s\n\n", pkg.FormatDuration(deps.now().Sub(deps.StartedAt)))

		b.WriteString("💾 Memory Usage:\n")
		fmt.Fprintf(&b, "• Sys: %s MB\n", pkg.Megabytes(mem.Sys))
		fmt.Fprintf(&b, "• Heap: %s MB\n", pkg.Megabytes(mem.HeapAlloc))
		fmt.Fprintf(&b, "• Goroutines: %d\n\n", runtime.NumGoroutine())

		b.WriteString("📊 Quota Statistics:\n")
		fmt.Fprintf(&b, "• Active Users: %d\n", stats.ActiveUsers)
		fmt.Fprintf(&b, "• Command Exhaustions: %d\n", stats.Exhaustions[models.QuotaCommands])
		fmt.Fprintf(&b, "• Download Exhaustions: %d\n", stats.Exhaustions[models.QuotaDownloads])
		fmt.Fprintf(&b, "• AI Request Exhaustions: %d\n", stats.Exhaustions[models.QuotaAIRequests])
		fmt.Fprintf(&b, "• Media Conversion Exhaustions: %d", stats.Exhaustions[models.QuotaMediaConversions])

		c.ReplyHTML(b.String())
		return nil
	}
}
