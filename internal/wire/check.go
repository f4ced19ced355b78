package wire

import (
	"context"
	"fmt"

	"foodorder/internal/config"
	"foodorder/internal/dbmongo"
	"foodorder/pkg/zlog"

	"go.uber.org/zap"
)

// StoreReport is what atlas-check prints for the configured store.
type StoreReport struct {
	Driver        string
	ServerVersion string
}

// CheckStore opens the configured store once, makes sure its indexes or
// tables exist and pings it.
func CheckStore(ctx context.Context, cfg *config.Config) (*StoreReport, error) {
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		repo, cleanup, err := ProvideRepository(cfg)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		if err := repo.Ping(ctx); err != nil {
			return nil, fmt.Errorf("store ping failed: %w", err)
		}
		return &StoreReport{Driver: config.StoreMySQL}, nil

	case config.StoreMongo, "":
		mc, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := mc.Close(context.Background()); err != nil {
				zlog.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		return checkMongo(ctx, mc, cfg.MongoDB.Collection)
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// checkMongo runs buildInfo, index creation and ping over the one client.
func checkMongo(ctx context.Context, mc *dbmongo.MongoClient, collection string) (*StoreReport, error) {
	version, err := mc.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	store := dbmongo.NewNotificationStore(mc, collection)
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store ping failed: %w", err)
	}

	return &StoreReport{Driver: config.StoreMongo, ServerVersion: version}, nil
}
