package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// stores is the selected document store backend.
type stores struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	pinger     handlers.Pinger
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			m.Close(context.Background())
			return nil, err
		}
		return &stores{
			users:      repository.NewMongoUserRepository(m.DB),
			complaints: repository.NewMongoComplaintRepository(m.DB),
			pinger:     m,
			close:      func() { m.Close(context.Background()) },
		}, nil

	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &stores{
			users:      repository.NewPostgresUserRepository(pool),
			complaints: repository.NewPostgresComplaintRepository(pool),
			pinger:     pg,
			close:      pg.Close,
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{
			users:      mem.Users(),
			complaints: mem.Complaints(),
			pinger:     mem,
			close:      func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
