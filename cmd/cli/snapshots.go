package main

import (
	"context"
	"strconv"

	"dataviz/adapters/sqlstore"
	"dataviz/domain/dataset"
	"dataviz/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

type snapshotRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rows      int    `json:"rows"`
	CreatedAt string `json:"created_at"`
}

func newSnapshotsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage saved datasets",
	}

	var (
		query string
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			snaps, err := sqlstore.NewSnapshotRepository(db).List(ctx, dataset.ListFilter{Query: query, Limit: limit})
			if err != nil {
				return err
			}

			rows := make([]snapshotRow, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, snapshotRow{
					ID:        s.ID.String(),
					Name:      s.Name,
					Rows:      s.RowCount,
					CreatedAt: s.CreatedAt.String(),
				})
			}
			return render(cmd.OutOrStdout(), c.cfg.Output, rows, func() string {
				cells := make([][]string, len(rows))
				for i, r := range rows {
					cells[i] = []string{r.ID, r.Name, strconv.Itoa(r.Rows), r.CreatedAt}
				}
				return markdownTable([]string{"id", "name", "rows", "created_at"}, cells)
			})
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "case-insensitive name filter")
	list.Flags().IntVar(&limit, "limit", dataset.DefaultListLimit, "maximum number of rows")

	cmd.AddCommand(list)
	return cmd
}

// openDB connects with the configured settings and brings the schema up to
// date.
func (c *cli) openDB(ctx context.Context) (*sqlx.DB, error) {
	dbCfg := c.cfg.database()
	db, err := sqlstore.Open(ctx, dbCfg.Driver, dbCfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
