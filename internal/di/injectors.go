//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"streakd/internal"
	"streakd/internal/backup"
	"streakd/internal/backup/interfaces"
	"streakd/internal/controllers"
	"streakd/internal/providers"
	"streakd/internal/services"
	"streakd/internal/storage"
	"streakd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewStreakConfigProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewStore,
		services.NewRecordStats,
		wire.Bind(new(providers.RecordCounter), new(*services.RecordStats)),
		services.NewStreakService,
		wire.Bind(new(services.StreakServiceInterface), new(*services.StreakService)),
		services.NewTrackingService,
		wire.Bind(new(services.TrackingServiceInterface), new(*services.TrackingService)),

		backup.NewZstdCompressor,
		backup.NewFileManager,
		backup.NewScheduler,
		wire.Bind(new(interfaces.SchedulerInterface), new(*backup.Scheduler)),
		wire.Bind(new(controllers.BackupClock), new(*backup.Scheduler)),

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
