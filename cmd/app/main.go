package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/safatanc/hypergiga-core/injector"
	"github.com/safatanc/hypergiga-core/internal/app/observability"
	"github.com/safatanc/hypergiga-core/internal/app/pkg"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := infrastructures.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	_, shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		Enabled:      cfg.TracingEnabled,
		EndpointURL:  cfg.OTLPEndpoint,
		SamplingRate: cfg.SamplingRate,
		ServiceName:  cfg.ServiceName,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize tracer: %v", err)
	}

	app, cleanup, err := injector.InitializeApplication(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	logger := app.Logger

	// Fiber configuration
	router := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		ReadTimeout:           time.Second * 60,
		WriteTimeout:          time.Second * 60,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: true,
		ErrorHandler:          pkg.ErrorResponse,
	})

	router.Use(recover.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, X-API-Key, X-Bot-Api-Secret-Token",
		AllowMethods:  "GET, POST, PUT, OPTIONS",
		ExposeHeaders: "Content-Length, Retry-After",
		MaxAge:        300,
	}))

	app.RegisterRoutes(router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"port":         cfg.HTTPPort,
			"store_driver": cfg.StoreDriver,
			"env":          cfg.AppEnv,
		}).Info("HTTP server listening")
		return router.Listen(":" + cfg.HTTPPort)
	})
	if cfg.QuotaResetEnabled {
		g.Go(func() error {
			return app.QuotaService.StartResetScheduler(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		return router.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
	}

	cleanup()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		logger.WithError(err).Warn("Failed to flush traces")
	}
}
