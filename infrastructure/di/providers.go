package di

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"catalog-backend/application/ports"
	"catalog-backend/infrastructure/config"
	"catalog-backend/infrastructure/persistence/postgres"
	"catalog-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideDB opens the PostgreSQL connection pool
func ProvideDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*postgres.DB, error) {
	return postgres.Open(ctx, cfg.DatabaseURL, postgres.Options{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetime:  time.Duration(cfg.DBConnMaxLifetime) * time.Second,
		StatementTimeout: time.Duration(cfg.StatementTimeout) * time.Millisecond,
	}, logger)
}

// ProvideRepositories wires every storage port against the shared pool
func ProvideRepositories(db *postgres.DB, logger *zap.Logger) ports.Repositories {
	return ports.Repositories{
		Domains:        postgres.NewDomainRepository(db, logger),
		DomainProducts: postgres.NewDomainProductRepository(db, logger),
		Products:       postgres.NewProductRepository(db, logger),
		Components:     postgres.NewComponentRepository(db, logger),
		Relations:      postgres.NewRelationStore(db, logger),
	}
}

// ProvideMetrics creates metrics instance
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}
