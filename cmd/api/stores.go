package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

// stores repositorios del backend elegido con STORE_DRIVER.
type stores struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	locations  repository.LocationRepository
	stock      repository.StockRepository
	ledger     repository.LedgerRepository
	operations repository.OperationRepository
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	analytics  repository.AnalyticsRepository
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.New()
		return &stores{
			tx:         s,
			products:   s.Products(),
			locations:  s.Locations(),
			stock:      s.Stock(),
			ledger:     s.Ledger(),
			operations: s.Operations(),
			users:      s.Users(),
			resets:     s.PasswordResets(),
			analytics:  s.Analytics(),
			close:      func() {},
		}, nil

	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, "up"); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("migraciones aplicadas")
		}
		opts := postgres.DefaultTxOptions()
		opts.StatementTimeout = cfg.DB.StatementTimeout
		opts.MaxAttempts = cfg.DB.TxMaxRetries
		return &stores{
			tx:         postgres.NewTxRunner(pool, opts, log),
			products:   postgres.NewProductRepository(pool),
			locations:  postgres.NewLocationRepository(pool),
			stock:      postgres.NewStockRepository(pool),
			ledger:     postgres.NewLedgerRepository(pool),
			operations: postgres.NewOperationRepository(pool),
			users:      postgres.NewUserRepository(pool),
			resets:     postgres.NewPasswordResetRepository(pool),
			analytics:  postgres.NewAnalyticsRepository(pool),
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
}
