package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

const mediaBackend = "media"

var convertFormats = map[string]bool{"audio": true, "video": true, "image": true}

func MediaCommands(_ *Registry, deps *Deps) []Command {
	download := models.CommandMetadata{
		Name:        "download",
		Aliases:     []string{"dl"},
		Category:    models.CategoryMedia,
		Description: "Download media from URL",
		Usage:       "/download <url>",
		Examples:    []string{"/download https://example.com/video.mp4"},
		Cooldown:    30,
		Roles:       models.AllRoles,
	}
	convert := models.CommandMetadata{
		Name:        "convert",
		Aliases:     []string{"conv"},
		Category:    models.CategoryMedia,
		Description: "Convert media format",
		Usage:       "/convert <audio|video|image> <url>",
		Examples:    []string{"/convert audio https://example.com/video.mp4"},
		Cooldown:    60,
		Roles:       models.AllRoles,
	}
	yt := models.CommandMetadata{
		Name:        "yt",
		Aliases:     []string{"youtube"},
		Category:    models.CategoryMedia,
		Description: "Search and download from YouTube",
		Usage:       "/yt <query>",
		Examples:    []string{"/yt funny cat videos"},
		Cooldown:    30,
		Roles:       models.AllRoles,
	}

	return []Command{
		{
			CommandMetadata: download,
			Handler: func(ctx context.Context, c *Context) error {
				if len(c.Args) == 0 {
					return usageError(download)
				}
				if err := deps.Validator.ValidateVar(c.Args[0], "required,url"); err != nil {
					c.Reply(textUnsupportedURL)
					return nil
				}

				if err := deps.Quota.ConsumeQuota(ctx, c.UserID(), models.QuotaDownloads, 1, c.Role); err != nil {
					return err
				}

				c.Reply(textDownloadProcessing)
				if err := deps.process(ctx, mediaBackend); err != nil {
					return err
				}
				c.Reply(textDownloadSuccess)
				return nil
			},
		},
		{
			CommandMetadata: convert,
			Handler: func(ctx context.Context, c *Context) error {
				if len(c.Args) < 2 || !convertFormats[strings.ToLower(c.Args[0])] {
					return usageError(convert)
				}
				if err := deps.Validator.ValidateVar(c.Args[1], "required,url"); err != nil {
					c.Reply(textUnsupportedURL)
					return nil
				}

				if err := deps.Quota.ConsumeQuota(ctx, c.UserID(), models.QuotaMediaConversions, 1, c.Role); err != nil {
					return err
				}

				c.Reply(textConvertProcessing)
				if err := deps.process(ctx, mediaBackend); err != nil {
					return err
				}
				c.Reply(textConvertSuccess)
				return nil
			},
		},
		{
			CommandMetadata: yt,
			Handler: func(ctx context.Context, c *Context) error {
				if len(c.Args) == 0 {
					return usageError(yt)
				}

				c.Reply(textYTSearching)
				if err := deps.process(ctx, mediaBackend); err != nil {
					return err
				}

				query := strings.Join(c.Args, " ")
				var b strings.Builder
				b.WriteString(textYTResults + "\n\n")
				for i := 1; i <= 3; i++ {
					fmt.Fprintf(&b, "%d. %s (sample %d)\n", i, query, i)
				}
				c.ReplyHTML(strings.TrimRight(b.String(), "\n"))
				return nil
			},
		},
	}
}
