// Package databasetest opens throwaway sqlite databases with the service schema
// and the externally owned evidence tables migrated.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hirelink/messaging-api/internal/infrastructure/database"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/dbschema"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
)

// Open returns a migrated database that lives until t finishes.
func Open(t testing.TB) (*gorm.DB, *transaction.Database) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "messaging.db") + "?_foreign_keys=off&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(context.Background(), db, zerolog.Nop()))
	require.NoError(t, db.AutoMigrate(dbschema.EvidenceSchemas()...))

	return db, transaction.NewDatabase(db)
}
