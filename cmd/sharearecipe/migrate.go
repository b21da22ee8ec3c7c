package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/sharearecipe/internal/config"
	"github.com/dukerupert/sharearecipe/internal/database"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Open applies pending migrations.
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	version, err := database.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", cfg.DBPath, version)
	return nil
}
