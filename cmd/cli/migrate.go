package main

import (
	"fmt"

	"dataviz/internal/migration"

	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := migration.Applied(ctx, db)
			if err != nil {
				return err
			}
			dbCfg := c.cfg.database()
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s applied (%s)\n", version, dbCfg.Driver)
			return nil
		},
	}
}
