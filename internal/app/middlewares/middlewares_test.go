package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func TestLimitByIP(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := NewRateLimitMiddleware(ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "http"), logger)

	app := fiber.New()
	app.Get("/", m.LimitByIP(ratelimit.Rate{Requests: 2, Window: time.Minute}), ok)

	request := func(ip string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusOK, request("1.1.1.1").StatusCode)
	resp := request("1.1.1.1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	resp = request("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	assert.Equal(t, http.StatusOK, request("2.2.2.2").StatusCode, "limits are per address")
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		m      *APIKeyMiddleware
		route  func(m *APIKeyMiddleware) fiber.Handler
		header string
		value  string
		want   int
	}{
		{"admin key accepted", NewAPIKeyMiddleware("k3y", ""), adminRoute, HeaderAPIKey, "k3y", http.StatusOK},
		{"admin key wrong", NewAPIKeyMiddleware("k3y", ""), adminRoute, HeaderAPIKey, "nope", http.StatusUnauthorized},
		{"admin key missing", NewAPIKeyMiddleware("k3y", ""), adminRoute, "", "", http.StatusUnauthorized},
		{"admin disabled", NewAPIKeyMiddleware("", ""), adminRoute, HeaderAPIKey, "", http.StatusForbidden},
		{"webhook secret accepted", NewAPIKeyMiddleware("", "s3cret"), webhookRoute, HeaderWebhookSecret, "s3cret", http.StatusOK},
		{"webhook secret wrong", NewAPIKeyMiddleware("", "s3cret"), webhookRoute, HeaderWebhookSecret, "guess", http.StatusUnauthorized},
		{"webhook open without secret", NewAPIKeyMiddleware("", ""), webhookRoute, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tt.route(tt.m), ok)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func adminRoute(m *APIKeyMiddleware) fiber.Handler   { return m.AuthAdmin }
func webhookRoute(m *APIKeyMiddleware) fiber.Handler { return m.AuthWebhook }
