package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hirelink/messaging-api/internal/config"
	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/auth"
	"github.com/hirelink/messaging-api/internal/infrastructure/database"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/conversationrepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/evidencerepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/messagerepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
	"github.com/hirelink/messaging-api/internal/infrastructure/identitycache"
	"github.com/hirelink/messaging-api/internal/infrastructure/inmemory"
	"github.com/hirelink/messaging-api/internal/infrastructure/lock"
	"github.com/hirelink/messaging-api/internal/infrastructure/logger"
	"github.com/hirelink/messaging-api/internal/infrastructure/observability"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver"
)

// @title Messaging API
// @version 1.0
// @description Recruiter and candidate messaging with access control and conversation context
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

// stores is the persistence side of the service, either gorm-backed or in-process.
type stores struct {
	conversations messaging.ConversationRepository
	messages      messaging.MessageRepository
	evidence      messaging.EvidenceSource
	identities    messaging.IdentityDirectory
	tx            messaging.Transactor
	ready         httpserver.ReadinessCheck
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	st, err := newStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	identities, err := identitycache.New(st.identities, cfg.IdentityCacheSize, cfg.IdentityCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize identity cache")
	}

	locker, closeLocker, err := newPairLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize pair lock")
	}
	defer closeLocker()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	service := newMessagingService(st, identities, locker, log, time.Now)
	httpServer := httpserver.New(cfg, log, service, authValidator, st.ready)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		evidence := inmemory.NewEvidence()
		return &stores{
			conversations: inmemory.NewConversationStore(),
			messages:      inmemory.NewMessageStore(),
			evidence:      evidence,
			identities:    evidence,
			tx:            inmemory.Transactor{},
		}, nil
	}

	db, err := newGormDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	txDB := transaction.NewDatabase(db)
	evidence := evidencerepo.NewEvidenceGormRepository(txDB)
	return &stores{
		conversations: conversationrepo.NewConversationGormRepository(txDB),
		messages:      messagerepo.NewMessageGormRepository(txDB),
		evidence:      evidence,
		identities:    evidence,
		tx:            txDB,
		ready:         newReadinessCheck(db),
	}, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return db, nil
}

func newReadinessCheck(db *gorm.DB) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func newPairLocker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (messaging.PairLocker, func(), error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, first-contact lock disabled")
		return lock.NoopPairLocker{}, func() {}, nil
	}

	client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	locker := lock.NewRedisPairLocker(client, cfg.PairLockTTL, cfg.PairLockWait, log)
	return locker, func() {
		if err := locker.Close(); err != nil {
			log.Error().Err(err).Msg("close redis client")
		}
	}, nil
}

func newMessagingService(st *stores, identities messaging.IdentityDirectory, locker messaging.PairLocker, log zerolog.Logger, now messaging.Clock) *messaging.Service {
	policy := messaging.NewAccessPolicy(st.evidence)
	resolver := messaging.NewContextResolver(st.evidence, now)
	messages := messaging.NewMessageService(st.conversations, st.messages, st.tx, log, now)
	projector := messaging.NewConversationListProjector(st.conversations, st.messages, identities, st.evidence, log)
	return messaging.NewService(st.conversations, identities, st.evidence, policy, resolver, messages, projector, locker, log, now)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
