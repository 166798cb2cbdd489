//go:build wireinject
// +build wireinject

package di

import (
	"CryptoCast/pkg/config"
	"CryptoCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Domain
		ProvideRegistry,
		ProvidePredictionClient,
		ProvideOutcomeStores,

		// Use cases
		ProvideController,
		ProvideRateLimiter,

		// Transport
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
