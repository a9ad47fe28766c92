package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/config"
	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/store"
)

// OpenStore connects the room store selected by STORE_DRIVER using the
// fetched backend parameters.
func OpenStore(ctx context.Context, cfg *config.Config, backend models.BackendConfig, logger *zap.Logger) (store.RoomStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Info("using in-memory room store", zap.String("project_id", backend.ProjectID))
		return store.NewMemoryRoomStore(), nil
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	dsn := DSN(cfg, backend)
	db, err := Connect(dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := Migrate(db.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	var feed store.Feed
	pqFeed, err := store.NewPQFeed(dsn, cfg.DBNotifyChannel, db, logger.Named("feed"))
	if err != nil {
		logger.Warn("LISTEN/NOTIFY unavailable, changes from other processes will not be seen", zap.Error(err))
		feed = store.NewLocalFeed()
	} else {
		feed = pqFeed
	}
	logger.Info("connected room store", zap.String("project_id", backend.ProjectID))
	return store.NewGormRoomStore(db, feed, logger.Named("store")), nil
}
