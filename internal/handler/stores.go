package handler

import (
	"context"
	"database/sql"
	"fmt"

	"product_api/internal/config"
	"product_api/internal/db"
	"product_api/internal/product"
	"product_api/internal/user"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Stores bundles the repositories of the configured backend along with
// whatever connection has to be closed on shutdown.
type Stores struct {
	Products product.Repository
	Users    user.Repository

	sqlDB *sql.DB
	rdb   *redis.Client
}

func NewMemoryStores() *Stores {
	return &Stores{
		Products: product.NewMemoryRepository(),
		Users:    user.NewMemoryRepository(),
	}
}

// OpenStores connects the backend named by cfg.Store.Driver. For Postgres it
// also applies migrations and registers pool stats on reg when reg is set.
func OpenStores(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		sqlDB, err := db.Init(ctx, &cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		if reg != nil {
			if err := reg.Register(collectors.NewDBStatsCollector(sqlDB, cfg.AppName)); err != nil {
				logrus.WithError(err).Warn("Failed to register database stats collector")
			}
		}
		return &Stores{
			Products: product.NewPostgresRepository(sqlDB),
			Users:    user.NewPostgresRepository(sqlDB),
			sqlDB:    sqlDB,
		}, nil

	case config.StoreDriverRedis:
		rdb, err := db.SetupRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Products: product.NewRedisRepository(rdb),
			Users:    user.NewRedisRepository(rdb),
			rdb:      rdb,
		}, nil

	case config.StoreDriverMemory:
		logrus.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStores(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (s *Stores) Close() error {
	switch {
	case s.sqlDB != nil:
		return s.sqlDB.Close()
	case s.rdb != nil:
		return s.rdb.Close()
	default:
		return nil
	}
}
