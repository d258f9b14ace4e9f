package main

import (
	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return database.NewMigrator(db, logger).Run(cfg.Database.MigrationsDir)
		},
	}
}
