package infrastructures

import (
	"context"
	"fmt"

	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDatabase(cfg *AppConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// NewRelationalStore selects the ledger backend for the configured driver.
func NewRelationalStore(cfg *AppConfig, logger *logrus.Logger) (stores.RelationalStore, func(), error) {
	if cfg.StoreDriver == StoreDriverMemory {
		logger.Warn("using in-memory relational store; quota ledger is not persisted")
		return stores.NewMemoryStore(), func() {}, nil
	}

	db, err := NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	store := stores.NewGormStore(db)
	if cfg.DatabaseAutoMigrate {
		if err := store.Migrate(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return store, cleanup, nil
}
