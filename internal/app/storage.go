package app

import (
	"context"
	"fmt"

	"github.com/ignatzorin/escrow-marketplace/internal/config"
	"github.com/ignatzorin/escrow-marketplace/internal/db"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/kvstore"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/persistence"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
)

// Storage: открытое хранилище выбранного драйвера.
type Storage struct {
	Driver string
	Repos  repository.Store
	Ping   handler.PingFunc
	Close  func() error
}

// OpenStorage подключает хранилище по cfg.StorageDriver. Для PostgreSQL применяются миграции.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPool)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &Storage{
			Driver: cfg.StorageDriver,
			Repos:  persistence.NewStore(conn),
			Ping:   conn.PingContext,
			Close:  conn.Close,
		}, nil

	case config.StorageLevelDB:
		ldb, err := kvstore.NewLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		return kvStorage(cfg.StorageDriver, kvstore.New(ldb)), nil

	case config.StorageMemory:
		logger.Log.Warn("storage: данные хранятся в памяти и будут потеряны при остановке")
		return kvStorage(cfg.StorageDriver, kvstore.New(kvstore.NewMemDB())), nil
	}
	return nil, fmt.Errorf("storage: неизвестный драйвер %q", cfg.StorageDriver)
}

func kvStorage(driver string, store *kvstore.Store) *Storage {
	return &Storage{
		Driver: driver,
		Repos:  store.Repositories(),
		Ping:   store.Ping,
		Close:  store.Close,
	}
}
