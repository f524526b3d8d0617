//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/safatanc/hypergiga-core/internal/app/deliveries"
	"github.com/safatanc/hypergiga-core/internal/app/dispatch"
	"github.com/safatanc/hypergiga-core/internal/app/middlewares"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewLogger,
	infrastructures.NewRelationalStore,
	infrastructures.NewCounterStore,
	infrastructures.NewValidator,
	provideQuotaStore,
	provideUserStore,
	provideBreakers,
	provideTelemetry,
	provideMetrics,
	provideMetricsExporter,
)

// Service providers
var serviceSet = wire.NewSet(
	provideRateLimits,
	provideQuotas,
	services.NewRateLimitService,
	services.NewQuotaService,
	provideUserService,
	provideCommandDeps,
	provideRegistry,
	providePipelineConfig,
	dispatch.NewPipeline,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	provideHTTPLimiter,
	provideAPIKeyMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewMetricsHandler,
	deliveries.NewUpdateHandler,
	deliveries.NewAdminHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication wires the application from its configuration. The
// returned cleanup closes store connections.
func InitializeApplication(cfg *infrastructures.AppConfig) (*Application, func(), error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return nil, nil, nil
}
