package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Stores holds the selected document backend plus whatever connections it needs.
type Stores struct {
	Backend  repository.Backend
	Postgres *Postgres
	Redis    *Redis
	SQLite   *SQLite
}

// OpenStores connects the backend chosen by cfg.Store.Backend. Redis is also
// connected whenever an events channel is configured.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{}

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		stores.Backend = repository.NewMemoryBackend()
	case config.BackendSQLite:
		db, err := OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		stores.SQLite = db
		stores.Backend = repository.NewSQLiteBackend(db.DB)
	case config.BackendPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		stores.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				stores.Close()
				return nil, err
			}
		}
		stores.Backend = repository.NewPostgresBackend(pg.PoolHandle())
	case config.BackendRedis:
		stores.Redis = NewRedis(ctx, cfg.Redis, logger)
		stores.Backend = repository.NewRedisBackend(stores.Redis.Client, cfg.Redis.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if stores.Redis == nil && cfg.Redis.EventsChannel != "" {
		stores.Redis = NewRedis(ctx, cfg.Redis, logger)
	}

	logger.Info("document store ready", zap.String("backend", cfg.Store.Backend))
	return stores, nil
}

// Close releases every open connection.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	s.Postgres.Close()
	s.Redis.Close()
	s.SQLite.Close()
}
