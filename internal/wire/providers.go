package wire

import (
	"context"
	"fmt"
	"time"

	"foodorder/internal/cache"
	"foodorder/internal/common"
	"foodorder/internal/config"
	"foodorder/internal/dbmongo"
	"foodorder/internal/dbmysql"
	"foodorder/internal/events"
	"foodorder/internal/metrics"
	"foodorder/internal/notif"
	"foodorder/pkg/zlog"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Application struct {
	Config      *config.Config
	Service     *notif.NotificationService
	GRPCHandler *notif.GRPCHandler
	Router      *mux.Router
	Metrics     *metrics.Metrics
	// Nil unless Kafka is enabled.
	Consumer *events.OutcomeConsumer
}

// ProvideConfig loads the environment and installs the global logger, so
// everything built after it logs through zlog.
func ProvideConfig() *config.Config {
	cfg := config.LoadConfig()
	zlog.Init(zlog.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	return cfg
}

func ProvideRepository(cfg *config.Config) (common.NotificationRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		db, err := dbmysql.NewMySQL(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := dbmysql.Migrate(db); err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return dbmysql.NewNotificationRepository(db), cleanup, nil

	case config.StoreMongo, "":
		mc, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mc.Close(ctx); err != nil {
				zlog.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		}

		store := dbmongo.NewNotificationStore(mc, cfg.MongoDB.Collection)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		zlog.Info("connected to MongoDB",
			zap.String("database", cfg.MongoDB.Database),
			zap.String("collection", cfg.MongoDB.Collection))
		return store, cleanup, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// ProvideUnreadCounter returns a nil counter when Redis is disabled; the
// service then always counts in the store.
func ProvideUnreadCounter(cfg *config.Config) (common.UnreadCounter, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	zlog.Info("unread count cache enabled",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("ttl", cfg.Redis.TTL()))

	return cache.NewRedisUnreadCache(client, cfg.Redis.TTL()), func() { _ = client.Close() }, nil
}

// ProvideEventPublisher returns a nil publisher when Kafka is disabled, so
// nothing is handed to the dispatcher.
func ProvideEventPublisher(cfg *config.Config) (common.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		zlog.Info("kafka disabled, dispatch hand-off is off")
		return nil, func() {}, nil
	}

	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.DispatchTopic)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("failed to close kafka publisher", zap.Error(err))
		}
	}
	return publisher, cleanup, nil
}

func ProvideMetrics() *metrics.Metrics {
	return metrics.NewWithRuntime()
}

func ProvideNotificationService(
	cfg *config.Config,
	repo common.NotificationRepository,
	counter common.UnreadCounter,
	publisher common.EventPublisher,
	m *metrics.Metrics,
) (*notif.NotificationService, func()) {
	service := notif.NewNotificationService(cfg, repo, counter, publisher, m)
	return service, service.Shutdown
}

func ProvideRouter(h *notif.HTTPHandler, m *metrics.Metrics) *mux.Router {
	return notif.NewRouter(h, m)
}

// ProvideOutcomeConsumer returns nil when Kafka is disabled; outcomes then
// only arrive over gRPC and HTTP.
func ProvideOutcomeConsumer(cfg *config.Config, service *notif.NotificationService) (*events.OutcomeConsumer, func(), error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.OutcomeTopic == "" {
		return nil, func() {}, nil
	}

	consumer, err := events.NewOutcomeConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OutcomeTopic, service)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			zlog.Warn("failed to close outcome consumer", zap.Error(err))
		}
	}
	return consumer, cleanup, nil
}
