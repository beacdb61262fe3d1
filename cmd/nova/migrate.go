package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nova/internal/cli"
	"github.com/Veraticus/nova/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the cache database schema to the latest version.

Other commands migrate automatically; this is useful to check the schema
or prepare the database ahead of time.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.DatabasePath

	slog.Info("Starting database migration", "database", dbPath, "status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"DATABASE", "CURRENT", "LATEST"}, [][]string{{
			dbPath, fmt.Sprint(current), fmt.Sprint(storage.ExpectedSchemaVersion),
		}}))

		pending, err := store.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Migrations pending; run \"nova migrate\""))
			for _, m := range pending {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d  %s\n", m.Version, m.Description)
			}
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}
