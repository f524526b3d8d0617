package injector

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/hypergiga-core/internal/app/commands"
	"github.com/safatanc/hypergiga-core/internal/app/deliveries"
	"github.com/safatanc/hypergiga-core/internal/app/dispatch"
	"github.com/safatanc/hypergiga-core/internal/app/middlewares"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/observability"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/safatanc/hypergiga-core/pkg/resilience"
	"github.com/sirupsen/logrus"
)

// Application represents the main application container for hypergiga-core
type Application struct {
	Config       *infrastructures.AppConfig
	Logger       *logrus.Logger
	QuotaService *services.QuotaService

	HealthHandler  *deliveries.HealthHandler
	MetricsHandler *deliveries.MetricsHandler
	UpdateHandler  *deliveries.UpdateHandler
	AdminHandler   *deliveries.AdminHandler
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	app.HealthHandler.RegisterRoutes(router)
	app.MetricsHandler.RegisterRoutes(router)
	app.UpdateHandler.RegisterRoutes(router)
	app.AdminHandler.RegisterRoutes(router)
}

// telemetry pairs the metrics recorder with its exposition handler, which is
// nil when metrics are disabled.
type telemetry struct {
	metrics observability.Metrics
	handler http.Handler
}

func provideTelemetry(cfg *infrastructures.AppConfig) (*telemetry, error) {
	metrics, handler, err := observability.InitMetrics(observability.MetricsConfig{Enabled: cfg.MetricsEnabled})
	if err != nil {
		return nil, err
	}
	return &telemetry{metrics: metrics, handler: handler}, nil
}

func provideMetrics(t *telemetry) observability.Metrics {
	return t.metrics
}

func provideMetricsExporter(t *telemetry) http.Handler {
	return t.handler
}

func provideQuotaStore(store stores.RelationalStore) stores.QuotaStore {
	return store
}

func provideUserStore(store stores.RelationalStore) stores.UserStore {
	return store
}

func provideBreakers(cfg *infrastructures.AppConfig) *resilience.Breakers {
	return resilience.NewBreakers(resilience.Settings{
		Threshold: cfg.BreakerThreshold,
		Timeout:   cfg.BreakerTimeout,
	})
}

func provideRateLimits(cfg *infrastructures.AppConfig) map[models.RateLimitClass]models.RateLimitConfig {
	return cfg.RateLimits
}

func provideQuotas(cfg *infrastructures.AppConfig) models.DefaultQuotas {
	return cfg.Quotas
}

func provideUserService(cfg *infrastructures.AppConfig, store stores.UserStore, logger *logrus.Logger) *services.UserService {
	return services.NewUserService(store, cfg.OwnerIDs, cfg.AdminIDs, logger)
}

func provideCommandDeps(cfg *infrastructures.AppConfig, quota *services.QuotaService, breakers *resilience.Breakers, validator *infrastructures.Validator) *commands.Deps {
	return &commands.Deps{
		Quota:      quota,
		Breakers:   breakers,
		Validator:  validator,
		Backend:    commands.SimulatedBackend(cfg.BackendDelay),
		RetryDelay: cfg.RetryDelay,
		StartedAt:  time.Now(),
	}
}

func provideRegistry(deps *commands.Deps) (*commands.Registry, error) {
	return commands.NewRegistry(deps, commands.DefaultCatalogs()...)
}

func providePipelineConfig(cfg *infrastructures.AppConfig) dispatch.PipelineConfig {
	return dispatch.PipelineConfig{BotUsername: cfg.BotUsername}
}

func provideHTTPLimiter(store ratelimit.Store) *ratelimit.Limiter {
	return ratelimit.NewLimiter(store, "http")
}

func provideAPIKeyMiddleware(cfg *infrastructures.AppConfig) *middlewares.APIKeyMiddleware {
	return middlewares.NewAPIKeyMiddleware(cfg.AdminAPIKey, cfg.WebhookSecret)
}
