package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/testutil"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.DBDriver = "mysql"

	db, err := database.Open(context.Background(), cfg, testutil.TestLogger())
	assert.Nil(t, db)
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := testutil.NewTestDB(t)

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Task{}))
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_user_id"))

	require.NoError(t, database.Ping(context.Background(), db))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, database.Migrate(db, database.DriverSQLite, testutil.TestLogger()))
	require.NoError(t, database.MigrationStatus(db, database.DriverSQLite, testutil.TestLogger()))
}

func TestMigrateDown(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.SQLitePath = "file:" + filepath.Join(t.TempDir(), "down.db") + "?_foreign_keys=on"
	log := testutil.TestLogger()

	db, err := database.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, database.Migrate(db, cfg.DBDriver, log))
	require.NoError(t, database.MigrateDown(db, cfg.DBDriver, log))

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.False(t, db.Migrator().HasTable(&models.Task{}))
}

func TestSQLite_ForeignKeyCascade(t *testing.T) {
	db := testutil.NewTestDB(t)

	user := &models.User{Email: "fk@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Task{Name: "t", Description: "d", UserID: user.ID}).Error)

	// Bypass the repository so only the schema's ON DELETE CASCADE acts.
	require.NoError(t, db.Exec("DELETE FROM users WHERE user_id = ?", user.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}
