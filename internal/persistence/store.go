package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/config"
	"github.com/deskline/helpdesk-service/internal/repository"
)

// Store bundles the repositories of the configured driver.
type Store struct {
	Driver   string
	Tickets  repository.TicketRepository
	Accounts repository.AccountRepository

	mongo    *Mongo
	postgres *Postgres
}

// OpenStore connects the driver selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pool := pg.PoolHandle()
		return &Store{
			Driver:   cfg.Store.Driver,
			Tickets:  repository.NewTicketRepository(pool),
			Accounts: repository.NewAccountRepository(pool),
			postgres: pg,
		}, nil
	case config.StoreDriverMongo:
		m, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return &Store{
			Driver:   cfg.Store.Driver,
			Tickets:  repository.NewTicketMongoRepository(m.Database),
			Accounts: repository.NewAccountMongoRepository(m.Database),
			mongo:    m,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Migrate prepares the schema: SQL migrations for Postgres, indexes for Mongo.
func (s *Store) Migrate(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if s.postgres != nil {
		return RunMigrations(ctx, s.postgres.PoolHandle(), cfg.Postgres.MigrationsDir, logger)
	}
	if s.mongo != nil {
		return s.mongo.EnsureIndexes(ctx, logger)
	}
	return nil
}

// Ping verifies connectivity of the active driver.
func (s *Store) Ping(ctx context.Context) error {
	if s.postgres != nil {
		return s.postgres.Ping(ctx)
	}
	return s.mongo.Ping(ctx)
}

// Close releases driver resources.
func (s *Store) Close(ctx context.Context) {
	if s == nil {
		return
	}
	s.postgres.Close()
	s.mongo.Close(ctx)
}
