// Package testutil opens throwaway in-memory databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"anoa.com/schoolhub/internal/bootstrap"
	"anoa.com/schoolhub/pkg/password"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated, isolated SQLite database. A single connection
// serialises transactions the way row locks would on PostgreSQL.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	password.Cost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// NewSeededDB is NewDB plus the default registration codes.
func NewSeededDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	require.NoError(t, bootstrap.SeedRegistrationCodes(db))
	return db
}
