//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FeatureMill/pkg/config"
	"FeatureMill/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCandleStore,
		ProvideCandleSource,
		ProvideKafkaPublisher,
		ProvideRedisClient,
		ProvideCache,
		ProvideQueue,
		ProvideModelClient,

		// Use cases
		ProvidePreparer,
		ProvideTrainer,
		ProvidePredictor,
		ProvideStatsProvider,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
