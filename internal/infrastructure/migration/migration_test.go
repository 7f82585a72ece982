package migration

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewManager_StrategyByEnvironment(t *testing.T) {
	m, err := NewManager("development", "mysql")
	require.NoError(t, err)
	assert.Equal(t, "gorm_auto_migrate", m.GetStrategy().GetName())

	m, err = NewManager("production", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "goose", m.GetStrategy().GetName())

	m, err = NewManager("test", "")
	require.NoError(t, err)
	assert.Equal(t, "goose", m.GetStrategy().GetName())

	_, err = NewManager("production", "sqlserver")
	assert.Error(t, err)
}

func TestEmbeddedScripts(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		files, err := fs.Glob(scriptsFS, "scripts/"+dialect+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dialect)
	}
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy())
	require.NoError(t, m.Migrate(db))

	for _, table := range []string{"payment_records", "subscription_records", "card_publications", "issuance_records", "payment_audit_entries"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
