package commands

import (
	"context"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

// stickerCommand is an image conversion: one media conversion is charged and
// the media backend does the work.
func stickerCommand(deps *Deps, meta models.CommandMetadata, needsArgs bool, success string) Command {
	meta.Category = models.CategoryStickers
	meta.Roles = models.AllRoles
	return Command{
		CommandMetadata: meta,
		Handler: func(ctx context.Context, c *Context) error {
			if needsArgs && len(c.Args) == 0 {
				return usageError(meta)
			}
			if err := deps.Quota.ConsumeQuota(ctx, c.UserID(), models.QuotaMediaConversions, 1, c.Role); err != nil {
				return err
			}
			if err := deps.process(ctx, mediaBackend); err != nil {
				return err
			}
			c.Reply(success)
			return nil
		},
	}
}

func StickerCommands(_ *Registry, deps *Deps) []Command {
	return []Command{
		stickerCommand(deps, models.CommandMetadata{
			Name:        "sticker",
			Aliases:     []string{"s"},
			Description: "Create sticker from image",
			Usage:       "/sticker [reply to image]",
			Examples:    []string{"/sticker"},
			Cooldown:    30,
		}, false, "🎨 Sticker created!"),
		stickerCommand(deps, models.CommandMetadata{
			Name:        "toimg",
			Aliases:     []string{"toimage"},
			Description: "Convert sticker to image",
			Usage:       "/toimg [reply to sticker]",
			Examples:    []string{"/toimg"},
			Cooldown:    30,
		}, false, "🖼️ Converted to image!"),
		stickerCommand(deps, models.CommandMetadata{
			Name:        "bgremove",
			Aliases:     []string{"removebg", "nobg"},
			Description: "Remove background from image",
			Usage:       "/bgremove [reply to image]",
			Examples:    []string{"/bgremove"},
			Cooldown:    60,
		}, false, "🎭 Background removed!"),
		stickerCommand(deps, models.CommandMetadata{
			Name:        "upscale",
			Aliases:     []string{"enhance"},
			Description: "Upscale image quality",
			Usage:       "/upscale [reply to image]",
			Examples:    []string{"/upscale"},
			Cooldown:    120,
		}, false, "🔍 Image enhanced!"),
		stickerCommand(deps, models.CommandMetadata{
			Name:        "watermark",
			Aliases:     []string{"wm"},
			Description: "Add watermark to image",
			Usage:       "/watermark <text> [reply to image]",
			Examples:    []string{"/watermark My Brand"},
			Cooldown:    60,
		}, true, "💧 Watermark added!"),
	}
}
