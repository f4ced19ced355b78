//go:build wireinject
// +build wireinject

package wire

import (
	"foodorder/internal/notif"

	"github.com/google/wire"
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideRepository,
		ProvideUnreadCounter,
		ProvideEventPublisher,
		ProvideMetrics,
		ProvideNotificationService,
		wire.Bind(new(notif.Lifecycle), new(*notif.NotificationService)),
		notif.NewGRPCHandler,
		notif.NewHTTPHandler,
		ProvideRouter,
		ProvideOutcomeConsumer,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
