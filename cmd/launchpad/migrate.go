package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"launchpad/internal/config"
	"launchpad/internal/database"
	"launchpad/internal/database/migration"
	"launchpad/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return migration.EnsureMigrated(cmd.Context(), db, log)
}
