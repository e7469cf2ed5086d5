//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"ade/internal"
	"ade/internal/controllers"
	"ade/internal/engine"
	"ade/internal/persistence"
	"ade/internal/providers"
	"ade/internal/services"
	"ade/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		engine.NewClock,
		engine.NewAdClient,
		engine.NewHTTPEmitter,
		services.NewEngineService,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
