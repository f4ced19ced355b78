package wire

import (
	"context"
	"testing"

	"foodorder/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideRepository_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "postgres"}}

	repo, cleanup, err := ProvideRepository(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Nil(t, repo)
	assert.Nil(t, cleanup)
}

func TestOptionalProviders_Disabled(t *testing.T) {
	cfg := &config.Config{}

	counter, cleanup, err := ProvideUnreadCounter(cfg)
	require.NoError(t, err)
	assert.Nil(t, counter, "disabled cache must be a nil interface")
	assert.NotPanics(t, cleanup)

	publisher, cleanup, err := ProvideEventPublisher(cfg)
	require.NoError(t, err)
	assert.Nil(t, publisher)
	assert.NotPanics(t, cleanup)

	consumer, cleanup, err := ProvideOutcomeConsumer(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, consumer)
	assert.NotPanics(t, cleanup)
}

func TestProvideUnreadCounter_Enabled(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{Addr: mr.Addr(), UnreadTTL: 30, Enabled: true}}

	counter, cleanup, err := ProvideUnreadCounter(cfg)
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, counter.Set(ctx, "U1", 4, 0))
	count, ok, err := counter.Get(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), count)
}

func TestProvideUnreadCounter_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{Redis: config.RedisConfig{Addr: addr, Enabled: true}}
	_, _, err := ProvideUnreadCounter(cfg)
	assert.Error(t, err)
}

func TestProvideEventPublisher_RequiresTopic(t *testing.T) {
	cfg := &config.Config{Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, Enabled: true}}

	_, _, err := ProvideEventPublisher(cfg)
	assert.Error(t, err)
}

func TestProvideNotificationService_CleanupStopsService(t *testing.T) {
	cfg := &config.Config{Notification: config.NotificationConfig{Workers: 1, ChannelBufferSize: 10}}

	service, cleanup := ProvideNotificationService(cfg, nil, nil, nil, ProvideMetrics())
	require.NotNil(t, service)
	assert.NotPanics(t, cleanup)
	assert.NotPanics(t, cleanup)
}
