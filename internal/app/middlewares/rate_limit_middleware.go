package middlewares

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

// Common rate limits
var (
	IngestLimit = ratelimit.Rate{
		Requests: 600,
		Window:   time.Minute,
	}

	AdminLimit = ratelimit.Rate{
		Requests: 60,
		Window:   time.Minute,
	}
)

// RateLimitMiddleware limits HTTP callers. Chat users are limited separately
// by the admission pipeline.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	logger  *logrus.Logger
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// LimitByIP creates a middleware that rate limits by IP address
func (m *RateLimitMiddleware) LimitByIP(limit ratelimit.Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ip:%s", getIPAddress(c))
		return m.handleRateLimit(c, key, limit)
	}
}

func (m *RateLimitMiddleware) handleRateLimit(c *fiber.Ctx, key string, limit ratelimit.Rate) error {
	allowed, info, err := m.limiter.Allow(c.UserContext(), key, limit)
	if err != nil {
		m.logger.WithField("key", key).WithError(err).Warn("HTTP rate limiter unavailable, allowing request")
	}

	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

	if !allowed {
		return pkg.ErrorResponse(c, errors.NewRateLimitError(time.Until(info.Reset)))
	}

	return c.Next()
}

// getIPAddress gets the client IP address from request
func getIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xrip := c.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	return c.IP()
}
