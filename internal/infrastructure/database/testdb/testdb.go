// Package testdb opens migrated in-memory sqlite databases for tests.
package testdb

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bizcard/internal/infrastructure/migration"
)

// New returns a fresh database with every model migrated. The pool is capped
// at one connection because each connection to :memory: is its own database;
// concurrent callers therefore serialize the same way row locks would.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(migration.AutoMigrateModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
