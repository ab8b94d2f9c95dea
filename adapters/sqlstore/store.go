// Package sqlstore implements the repository ports on sqlx. Queries are
// written with ? placeholders and rebound for the connected driver, so the
// same code serves SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"dataviz/domain/dataset"
	"dataviz/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to driver/dsn and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s database", driver), err)
	}
	if driver == "sqlite" {
		// one writer; avoids SQLITE_BUSY and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// whereClause renders filter as SQL with ? placeholders. nameColumn is the
// column searched by Query.
func whereClause(filter dataset.ListFilter, nameColumn string, withProcessed bool) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, "LOWER("+nameColumn+") LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if withProcessed && filter.Processed != nil {
		conds = append(conds, "processed = ?")
		args = append(args, *filter.Processed)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func notFoundOr(err error, resource, action string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource)
	}
	return errors.DatabaseError("failed to "+action, err)
}

func expectAffected(result sql.Result, resource string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NotFound(resource)
	}
	return nil
}
