package sqlite

import (
	"path/filepath"
	"testing"

	"usermgmt/internal/infra/persistence/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.True(t, db.Migrator().HasTable(&model.UserModel{}))
	assert.True(t, db.Migrator().HasIndex(&model.UserModel{}, "idx_users_email"))
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.FileExists(t, path)
}
