// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/config"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/logger"
)

const (
	APIBaseURL       = "/api/v1"
	HealthEndpoint   = APIBaseURL + "/health"
	RegisterEndpoint = APIBaseURL + "/auth/register"
	LoginEndpoint    = APIBaseURL + "/auth/login"
	UsersEndpoint    = APIBaseURL + "/users/" // Append user ID dynamically
)

// TestConfig returns a config suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		LogLevel:              slog.LevelError,
		ApiServicePort:        "8080",
		ApiGrpcPort:           "50052",
		DBDriver:              database.DriverSQLite,
		SQLitePath:            "file::memory:?_foreign_keys=on",
		JWTSecret:             "test-secret-key-for-testing-purposes",
		AccessTokenExpiration: 900,
		BcryptCost:            int64(bcrypt.MinCost),
		UserCacheTTL:          300,
		ShutdownTimeout:       5,
	}
}

// TestLogger returns a silent logger for testing
func TestLogger() *slog.Logger {
	return logger.Discard()
}

// NewTestDB opens a migrated in-memory SQLite database that is closed with the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := TestConfig()
	log := TestLogger()

	db, err := database.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, cfg.DBDriver, log))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
