package fx

import (
	"runhub/internal/api"
	"runhub/internal/auth"
	"runhub/internal/config"
	"runhub/internal/database"
	"runhub/internal/logger"
	"runhub/internal/repository"
	"runhub/internal/server"
	"runhub/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideCredentialManager(repo *repository.AthleteRepository, strava *api.StravaClient, log zerolog.Logger) *auth.Manager {
	return auth.NewManager(repo, strava, log)
}

func ProvideActivityService(strava *api.StravaClient, tokens *auth.Manager, cfg *config.Config, log zerolog.Logger) *service.ActivityService {
	return service.NewActivityService(strava, tokens, cfg.MaxActivityPages, log)
}

func ProvideCommunityService(repo *repository.AthleteRepository, activities *service.ActivityService, cfg *config.Config, log zerolog.Logger) *service.CommunityService {
	return service.NewCommunityService(repo, activities, cfg, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// store
	fx.Provide(repository.NewAthleteRepository),
	// api client
	fx.Provide(api.NewStravaClient),
	// svc
	fx.Provide(ProvideCredentialManager),
	fx.Provide(ProvideActivityService),
	fx.Provide(ProvideCommunityService),
	// server
	fx.Provide(server.NewRunHubServer),
)
