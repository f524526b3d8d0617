package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

const aiBackend = "ai"

// aiCommand charges one AI request, reports progress and returns a simulated
// answer built from the arguments.
func aiCommand(deps *Deps, meta models.CommandMetadata, needsArgs bool, processing string, answer func(input string) string) Command {
	meta.Category = models.CategoryAI
	meta.Roles = models.AllRoles
	return Command{
		CommandMetadata: meta,
		Handler: func(ctx context.Context, c *Context) error {
			if needsArgs && len(c.Args) == 0 {
				return usageError(meta)
			}

			if err := deps.Quota.ConsumeQuota(ctx, c.UserID(), models.QuotaAIRequests, 1, c.Role); err != nil {
				return err
			}

			c.Reply(processing)
			if err := deps.process(ctx, aiBackend); err != nil {
				return err
			}
			c.Reply(answer(strings.Join(c.Args, " ")))
			return nil
		},
	}
}

func AICommands(_ *Registry, deps *Deps) []Command {
	return []Command{
		aiCommand(deps, models.CommandMetadata{
			Name:        "ask",
			Aliases:     []string{"ai", "chat"},
			Description: "Ask AI assistant a question",
			Usage:       "/ask <question>",
			Examples:    []string{"/ask What is the capital of France?"},
			Cooldown:    10,
		}, true, "🤖 AI is thinking...", func(q string) string {
			return fmt.Sprintf("🤖 You asked: \"%s\"\n\nThis is a simulated answer.", q)
		}),
		aiCommand(deps, models.CommandMetadata{
			Name:        "summarize",
			Aliases:     []string{"sum"},
			Description: "Summarize text or URL content",
			Usage:       "/summarize <text|url>",
			Examples:    []string{"/summarize https://example.com/article"},
			Cooldown:    30,
		}, true, "📝 Creating summary...", func(string) string {
			return "📝 Summary: This is a simulated summary."
		}),
		aiCommand(deps, models.CommandMetadata{
			Name:        "translate",
			Aliases:     []string{"trans"},
			Description: "Translate text to another language",
			Usage:       "/translate <text> [target_lang]",
			Examples:    []string{"/translate Hello world", "/translate Bonjour en"},
			Cooldown:    15,
		}, true, "🌐 Translating...", func(text string) string {
			return fmt.Sprintf("Translation to en: \"%s\" → \"This is a simulated translation\"", text)
		}),
		aiCommand(deps, models.CommandMetadata{
			Name:        "ocr",
			Aliases:     []string{"text"},
			Description: "Extract text from image (reply to image)",
			Usage:       "/ocr (reply to image)",
			Examples:    []string{"/ocr (reply to image)"},
			Cooldown:    20,
		}, false, "👁️ Extracting text...", func(string) string {
			return "👁️ Extracted text: This is simulated OCR output."
		}),
		aiCommand(deps, models.CommandMetadata{
			Name:        "tts",
			Aliases:     []string{"speak"},
			Description: "Convert text to speech",
			Usage:       "/tts <text>",
			Examples:    []string{"/tts Hello world"},
			Cooldown:    20,
		}, true, "🔊 Generating audio...", func(string) string {
			return "🔊 Audio generated!"
		}),
		aiCommand(deps, models.CommandMetadata{
			Name:        "stt",
			Aliases:     []string{"listen"},
			Description: "Convert speech to text (reply to voice)",
			Usage:       "/stt (reply to voice message)",
			Examples:    []string{"/stt (reply to voice message)"},
			Cooldown:    20,
		}, false, "🎤 Converting to text...", func(string) string {
			return "🎤 Transcription: This is a simulated transcription."
		}),
	}
}
