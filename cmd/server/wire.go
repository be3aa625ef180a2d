//go:build wireinject

package main

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hirelink/messaging-api/internal/config"
	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/auth"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/evidencerepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/identitycache"
	"github.com/hirelink/messaging-api/internal/infrastructure/logger"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver"
)

var messagingSet = wire.NewSet(
	messaging.NewAccessPolicy,
	messaging.NewContextResolver,
	messaging.NewMessageService,
	messaging.NewConversationListProjector,
	messaging.NewService,
)

// BuildApplication assembles the postgres-backed service with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideGormDB,
		repository.RepositoryProvider,
		provideIdentityDirectory,
		newPairLocker,
		newReadinessCheck,
		provideClock,
		provideAuthValidator,
		messagingSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

func provideGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	return newGormDB(ctx, cfg, log)
}

func provideIdentityDirectory(repo *evidencerepo.EvidenceGormRepository, cfg *config.Config) (messaging.IdentityDirectory, error) {
	return identitycache.New(repo, cfg.IdentityCacheSize, cfg.IdentityCacheTTL)
}

func provideClock() messaging.Clock {
	return time.Now
}

func provideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}
