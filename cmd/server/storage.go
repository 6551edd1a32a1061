package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/config"
	"github.com/mamadbah2/herdboard/internal/repository"
	"github.com/mamadbah2/herdboard/internal/repository/memory"
	"github.com/mamadbah2/herdboard/internal/repository/mongodb"
	"github.com/mamadbah2/herdboard/internal/repository/sqlite"
)

// openStore builds the key-value backend selected by STORAGE_DRIVER.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (repository.KeyValueStore, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, state is lost on restart")
		return memory.NewStore(), nil
	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.Collection)
		if err != nil {
			return nil, err
		}
		logger.Info("mongodb store connected", zap.String("db", cfg.MongoDB.DBName), zap.String("collection", cfg.MongoDB.Collection))
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
