package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const retryDelay = 2 * time.Second

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Open connects to the configured database. Postgres connections are retried
// while the server comes up; sqlite is opened directly.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger(cfg, logger),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		return openSQLite(cfg, gormCfg, logger)
	case DriverPostgres, "":
		return openPostgres(ctx, cfg, gormCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, gormCfg *gorm.Config, logger *slog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQLHost,
		cfg.PostgreSQLUser,
		cfg.PostgreSQLPassword,
		cfg.PostgreSQLDatabase,
		cfg.PostgreSQLPort,
	)

	logger.Info("🔌 [Database] Connecting to PostgreSQL...",
		"host", cfg.PostgreSQLHost,
		"port", cfg.PostgreSQLPort,
		"database", cfg.PostgreSQLDatabase,
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	maxRetries := max(cfg.DBConnectRetries, 0)
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewConstant(retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Warn("⏳ [Database] Connection failed, retrying...",
				"attempt", attempt,
				"max_retries", maxRetries,
				"retry_in", retryDelay,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", attempt, err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}

	logger.Info("✅ [Database] Database connection established")
	return db, nil
}

func openSQLite(cfg *config.Config, gormCfg *gorm.Config, logger *slog.Logger) (*gorm.DB, error) {
	logger.Info("🔌 [Database] Opening SQLite database...", "path", cfg.SQLitePath)

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows a single writer; in-memory databases also live on one connection.
	sqlDB.SetMaxOpenConns(1)

	logger.Info("✅ [Database] Database connection established")
	return db, nil
}

// Migrate applies all pending migrations for the given driver.
func Migrate(db *gorm.DB, driver string, logger *slog.Logger) error {
	logger.Info("🔄 [Database] Running migrations...", "driver", driver)

	sqlDB, dir, err := prepareGoose(db, driver, logger)
	if err != nil {
		return err
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info("✅ [Database] Migrations completed successfully")
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *gorm.DB, driver string, logger *slog.Logger) error {
	sqlDB, dir, err := prepareGoose(db, driver, logger)
	if err != nil {
		return err
	}

	if err := goose.Down(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(db *gorm.DB, driver string, logger *slog.Logger) error {
	sqlDB, dir, err := prepareGoose(db, driver, logger)
	if err != nil {
		return err
	}

	if err := goose.Status(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func prepareGoose(db *gorm.DB, driver string, logger *slog.Logger) (*sql.DB, string, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dialect, dir := "postgres", "migrations/postgres"
	if driver == DriverSQLite {
		dialect, dir = "sqlite3", "migrations/sqlite"
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{logger: logger})

	if err := goose.SetDialect(dialect); err != nil {
		return nil, "", fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return sqlDB, dir, nil
}

// gormLogger routes gorm's statement logging through slog. Missing rows are
// an expected outcome for lookups and are not logged.
func gormLogger(cfg *config.Config, logger *slog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg.LogLevel <= slog.LevelDebug {
		level = gormlogger.Info
	}

	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf("[Goose] "+format, v...))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf("[Goose] "+format, v...))
	os.Exit(1)
}
