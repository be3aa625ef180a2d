package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var SchemaRegistry []any

// RegisterSchemaForAutoMigrate adds models owned by this service to the migration set.
func RegisterSchemaForAutoMigrate(models ...any) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// Config holds database configuration
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
}

// GormConfig returns the gorm settings shared by every dialect.
func GormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Connect creates a new postgres connection with the given configuration
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// AutoMigrate creates or updates the tables registered by dbschema with gorm.
// Postgres deployments use Migrate; this path serves dialects without SQL migrations.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	for _, model := range SchemaRegistry {
		if err := db.WithContext(ctx).AutoMigrate(model); err != nil {
			log.Error().
				Str("error_code", "d41c6f2a-7b3e-4a58-9c1d-2e6f8a0b4c7d").
				Err(err).
				Msgf("failed to auto migrate schema: %T", model)
			return err
		}
	}
	log.Info().Int("schemas", len(SchemaRegistry)).Msg("database schema migrated")
	return nil
}
