package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/trash-scanner/internal/config"
	"github.com/Veraticus/trash-scanner/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the SQLite schema to the latest version. Redis needs no
migrations.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	dbPath := config.ExpandPath(config.FirstNonEmpty(viper.GetString("database.path"), config.DefaultDatabasePath))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if status {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\nCurrent version: %d\nLatest version: %d\n",
			dbPath, current, storage.ExpectedSchemaVersion)
		return err
	}

	slog.Info("Running database migrations", "database", dbPath, "from", current, "to", storage.ExpectedSchemaVersion)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Database migrations completed successfully")
	return nil
}
