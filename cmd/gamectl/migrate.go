package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back schema migrations",
	Long:      "up applies all pending migrations; down rolls back the latest one.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{database.MigrateUp, database.MigrateDown},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Database.MigrationsDir
		}

		sqlDB, err := database.OpenSQL(cfg.Database.PostgresURL())
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := database.Migrate(sqlDB, dir, args[0], log); err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "", "Migrations directory (defaults to database.migrations_dir)")
}
