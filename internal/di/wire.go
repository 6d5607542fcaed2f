//go:build wireinject
// +build wireinject

package di

import (
	"ShelfScout/pkg/config"
	"ShelfScout/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories
		ProvideScanStorage,
		ProvideScanPublisher,
		ProvideScanStream,
		ProvideFreshnessStore,

		// Vendor clients
		ProvideCompsFetcher,
		ProvideOfferFetcher,
		ProvideMetadataFetcher,
		ProvideSaleEstimator,

		// Core services
		ProvideSeriesTracker,
		ProvideRefreshQueue,
		ProvideFreshnessScheduler,

		// Use cases
		ProvideScanProcessor,
		ProvideScanCollector,
		ProvideKafkaScansHandler,
		ProvideEvaluateUseCase,
		ProvideScanQueryUseCase,
		ProvideRefreshWorker,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
