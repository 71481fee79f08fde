package db

import (
	"context"
	"fmt"

	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

// NewSnapshotStore opens the store selected by the database driver. It
// returns nil when the driver is "none".
func NewSnapshotStore(ctx context.Context, cfg *config.Config) (repositories.SnapshotStore, error) {
	switch cfg.Database.Driver {
	case config.DriverNone, "":
		logger.Info().Msg("No snapshot database configured")
		return nil, nil
	case config.DriverSQLite:
		store, err := NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.Database.Path).Msg("SQLite snapshot store ready")
		return store, nil
	case config.DriverPostgres:
		pg, err := NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, pg)
		if err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("PostgreSQL snapshot store ready")
		return store, nil
	case config.DriverRedis:
		store, err := NewRedisStore(ctx, cfg.Database.RedisAddr, cfg.Database.RedisPassword,
			cfg.Database.RedisDB, cfg.Database.RedisKey)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.Database.RedisAddr).Str("key", cfg.Database.RedisKey).Msg("Redis snapshot store ready")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
