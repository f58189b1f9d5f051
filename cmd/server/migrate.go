package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/requestline/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := store.NewSQLiteDB(cfg.DBPath, log)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		switch direction {
		case "down":
			err = db.MigrateDown(ctx)
		case "status":
			err = db.MigrationStatus(ctx)
		default:
			err = db.Migrate(ctx)
		}
		if err != nil {
			return err
		}

		version, err := db.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
