package storage

import (
	"context"
	"fmt"
	"log"

	"trizen-careers/internal/config"
	"trizen-careers/internal/database"
)

// Open returns the Store selected by cfg.StorageDriver and a function releasing its resources.
func Open(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Println("Client state stored in memory, it will not survive a restart")
		return NewMemoryStore(), func() error { return nil }, nil

	case config.StoragePostgres:
		db, err := database.GetMainDB()
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewGormStore(db), db.Close, nil

	case config.StorageSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("storage driver '%s' not supported", cfg.StorageDriver)
	}
}
