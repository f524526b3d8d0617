package deliveries

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/commands"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
	"github.com/safatanc/hypergiga-core/pkg/resilience"
)

const Version = "1.0.0"

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	config    *infrastructures.AppConfig
	store     stores.RelationalStore
	limiter   *services.RateLimitService
	quota     *services.QuotaService
	registry  *commands.Registry
	startedAt time.Time
}

func NewHealthHandler(config *infrastructures.AppConfig, store stores.RelationalStore, limiter *services.RateLimitService, quota *services.QuotaService, registry *commands.Registry) *HealthHandler {
	return &HealthHandler{
		config:    config,
		store:     store,
		limiter:   limiter,
		quota:     quota,
		registry:  registry,
		startedAt: time.Now(),
	}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/healthz", h.GetHealth)
	router.Get("/readyz", h.GetReady)
	router.Get("/info", h.GetInfo)
}

func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, h.config.ServiceName)
}

// GetReady pings both stores. An open quota circuit also marks the service
// unready since every command would be refused.
func (h *HealthHandler) GetReady(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"database":      "ok",
		"counters":      "ok",
		"quota_breaker": h.quota.BreakerState().String(),
	}
	ready := h.quota.BreakerState() != resilience.StateOpen
	if err := h.store.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	}
	if err := h.limiter.Ping(ctx); err != nil {
		checks["counters"] = err.Error()
		ready = false
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.WebResponse[map[string]string]{
			Success: false,
			Message: "Service not ready",
			Data:    checks,
		})
	}
	return pkg.SuccessResponse(c, checks)
}

type info struct {
	Service     string                   `json:"service"`
	Version     string                   `json:"version"`
	Environment string                   `json:"environment"`
	StoreDriver string                   `json:"store_driver"`
	Uptime      string                   `json:"uptime"`
	Commands    int                      `json:"commands"`
	Categories  []models.CommandCategory `json:"categories"`
}

func (h *HealthHandler) GetInfo(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, info{
		Service:     h.config.ServiceName,
		Version:     Version,
		Environment: h.config.AppEnv,
		StoreDriver: h.config.StoreDriver,
		Uptime:      pkg.FormatDuration(time.Since(h.startedAt)),
		Commands:    len(h.registry.All()),
		Categories:  h.registry.GetCategories(),
	})
}
