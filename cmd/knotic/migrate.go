package main

import (
	"fmt"

	"github.com/jonathan/knotic/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url (KNOTIC_DATABASE_URL) is required")
	}
	if err := db.Migrate(cmd.Context(), cfg.Database.URL); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}
