//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"susrolld/internal"
	"susrolld/internal/anilist"
	"susrolld/internal/controllers"
	"susrolld/internal/gacha"
	"susrolld/internal/gacha/interfaces"
	"susrolld/internal/providers"
	"susrolld/internal/services"
	"susrolld/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		services.NewAccountService,
		anilist.NewClient,
		wire.Bind(new(gacha.CharacterSource), new(*anilist.Client)),
		gacha.NewRateLimiter,
		gacha.NewFetcher,
		gacha.NewZstdCompressor,
		gacha.NewFileManager,
		wire.Bind(new(interfaces.SaverInterface), new(*gacha.FileManager)),
		gacha.NewSession,
		gacha.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
