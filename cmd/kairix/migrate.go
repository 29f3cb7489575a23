package main

import (
	"fmt"

	"github.com/kairix/todo/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Open the configured database, apply pending migrations and print the schema version.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := store.SchemaVersion(db.DB(), db.Dialect())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database (%s) is at schema version %d\n", db.Dialect(), version)
	return nil
}
