package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
)

const shortLinkBase = "https://hg.link/"

// replyCommand answers with a fixed text once the argument count is met.
func replyCommand(meta models.CommandMetadata, category models.CommandCategory, minArgs int, text string) Command {
	meta.Category = category
	if len(meta.Roles) == 0 {
		meta.Roles = models.AllRoles
	}
	return Command{
		CommandMetadata: meta,
		Handler: func(_ context.Context, c *Context) error {
			if len(c.Args) < minArgs {
				return usageError(meta)
			}
			c.Reply(text)
			return nil
		},
	}
}

func UtilityCommands(_ *Registry, deps *Deps) []Command {
	shorten := models.CommandMetadata{
		Name:        "shorten",
		Aliases:     []string{"shorturl"},
		Category:    models.CategoryUtilities,
		Description: "Shorten URL",
		Usage:       "/shorten <url>",
		Examples:    []string{"/shorten https://example.com"},
		Cooldown:    10,
		Roles:       models.AllRoles,
	}
	expand := models.CommandMetadata{
		Name:        "expand",
		Aliases:     []string{"longurl"},
		Category:    models.CategoryUtilities,
		Description: "Expand shortened URL",
		Usage:       "/expand <short_url>",
		Examples:    []string{"/expand https://bit.ly/abc123"},
		Cooldown:    10,
		Roles:       models.AllRoles,
	}
	remind := models.CommandMetadata{
		Name:        "remind",
		Aliases:     []string{"reminder"},
		Category:    models.CategoryUtilities,
		Description: "Set reminder",
		Usage:       "/remind <time> <message>",
		Examples:    []string{"/remind 10m Take a break", "/remind 1h Meeting"},
		Cooldown:    10,
		Roles:       models.AllRoles,
	}
	poll := models.CommandMetadata{
		Name:        "poll",
		Aliases:     []string{"vote"},
		Category:    models.CategoryUtilities,
		Description: "Create poll",
		Usage:       "/poll <question> | <option1> | <option2> ...",
		Examples:    []string{"/poll What's for lunch? | Pizza | Burger | Salad"},
		Cooldown:    30,
		Roles:       models.AllRoles,
	}

	return []Command{
		{
			CommandMetadata: shorten,
			Handler: func(_ context.Context, c *Context) error {
				if len(c.Args) == 0 {
					return usageError(shorten)
				}
				if err := deps.Validator.ValidateVar(c.Args[0], "url"); err != nil {
					c.Reply(textUnsupportedURL)
					return nil
				}
				c.Reply("🔗 URL shortened!\n" + shortLinkBase + pkg.RandomString(7))
				return nil
			},
		},
		{
			CommandMetadata: expand,
			Handler: func(_ context.Context, c *Context) error {
				if len(c.Args) == 0 {
					return usageError(expand)
				}
				if err := deps.Validator.ValidateVar(c.Args[0], "url"); err != nil {
					c.Reply(textUnsupportedURL)
					return nil
				}
				c.Reply("🔗 URL expanded!")
				return nil
			},
		},
		replyCommand(models.CommandMetadata{
			Name:        "wiki",
			Aliases:     []string{"wikipedia"},
			Description: "Search Wikipedia",
			Usage:       "/wiki <query>",
			Examples:    []string{"/wiki Albert Einstein"},
			Cooldown:    10,
		}, models.CategoryUtilities, 1, "📚 Wikipedia information found!"),
		replyCommand(models.CommandMetadata{
			Name:        "define",
			Aliases:     []string{"dictionary"},
			Description: "Get word definition",
			Usage:       "/define <word>",
			Examples:    []string{"/define hello"},
			Cooldown:    10,
		}, models.CategoryUtilities, 1, "📖 Word definition found!"),
		{
			CommandMetadata: remind,
			Handler: func(_ context.Context, c *Context) error {
				if len(c.Args) < 2 {
					return usageError(remind)
				}
				after, err := time.ParseDuration(c.Args[0])
				if err != nil || after <= 0 {
					return usageError(remind)
				}
				c.Reply(fmt.Sprintf("⏰ Reminder set! I'll remind you in %s", pkg.FormatDuration(after)))
				return nil
			},
		},
		replyCommand(models.CommandMetadata{
			Name:        "todo",
			Aliases:     []string{"task"},
			Description: "Manage todo list",
			Usage:       "/todo <add|list|done|delete> [item]",
			Examples:    []string{"/todo add Buy groceries", "/todo list"},
			Cooldown:    5,
		}, models.CategoryUtilities, 1, "📝 Todo list updated!"),
		{
			CommandMetadata: poll,
			Handler: func(_ context.Context, c *Context) error {
				var parts []string
				for _, part := range strings.Split(strings.Join(c.Args, " "), "|") {
					if part = strings.TrimSpace(part); part != "" {
						parts = append(parts, part)
					}
				}
				if len(parts) < 3 {
					return usageError(poll)
				}
				var b strings.Builder
				fmt.Fprintf(&b, "🗳️ Poll created!\n\n%s\n", parts[0])
				for i, option := range parts[1:] {
					fmt.Fprintf(&b, "%d. %s\n", i+1, option)
				}
				c.Reply(strings.TrimRight(b.String(), "\n"))
				return nil
			},
		},
		replyCommand(models.CommandMetadata{
			Name:        "quiz",
			Aliases:     []string{"question"},
			Description: "Start quiz",
			Usage:       "/quiz [category]",
			Examples:    []string{"/quiz", "/quiz general"},
			Cooldown:    60,
		}, models.CategoryUtilities, 0, "🧠 Quiz started!"),
	}
}
