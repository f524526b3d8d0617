package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
)

const (
	HeaderAPIKey        = "X-API-Key"
	HeaderWebhookSecret = "X-Bot-Api-Secret-Token"
)

// APIKeyMiddleware guards the admin API and the update webhook with shared
// secrets. An empty secret disables the corresponding route group.
type APIKeyMiddleware struct {
	adminAPIKey   string
	webhookSecret string
}

func NewAPIKeyMiddleware(adminAPIKey, webhookSecret string) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		adminAPIKey:   adminAPIKey,
		webhookSecret: webhookSecret,
	}
}

// AuthAdmin requires the admin API key.
func (m *APIKeyMiddleware) AuthAdmin(c *fiber.Ctx) error {
	if m.adminAPIKey == "" {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Admin API is disabled"))
	}
	if !secretEqual(c.Get(HeaderAPIKey), m.adminAPIKey) {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid API key"))
	}
	return c.Next()
}

// AuthWebhook checks the secret token the transport sends with each update.
// Without a configured secret every caller is accepted.
func (m *APIKeyMiddleware) AuthWebhook(c *fiber.Ctx) error {
	if m.webhookSecret == "" {
		return c.Next()
	}
	if !secretEqual(c.Get(HeaderWebhookSecret), m.webhookSecret) {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid webhook secret"))
	}
	return c.Next()
}

func secretEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
