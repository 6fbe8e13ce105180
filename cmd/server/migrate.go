package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/config"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/logger"
)

type migrationAction func(db *gorm.DB, driver string, logger *slog.Logger) error

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back or inspect the embedded SQL migrations for the configured DB_DRIVER.`,
	}

	cmd.AddCommand(newMigrationCmd("up", "Apply all pending migrations", database.Migrate))
	cmd.AddCommand(newMigrationCmd("down", "Roll back the most recent migration", database.MigrateDown))
	cmd.AddCommand(newMigrationCmd("status", "Show which migrations are applied", database.MigrationStatus))

	return cmd
}

func newMigrationCmd(use, short string, action migrationAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			return runMigration(cmd.Context(), cfg, logger.New(cfg), action)
		},
	}
}

func runMigration(ctx context.Context, cfg *config.Config, appLogger *slog.Logger, action migrationAction) error {
	db, err := database.Open(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return action(db, cfg.DBDriver, appLogger)
}
