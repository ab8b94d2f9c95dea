package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	runner := NewRunner()

	version, err := Applied(ctx, db)
	require.Error(t, err, "schema_migrations does not exist yet")
	assert.Empty(t, version)

	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	version, err = Applied(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, runner.Version(), version)

	for _, tbl := range []string{"uploads", "snapshots"} {
		var n int
		require.NoError(t, db.GetContext(ctx, &n,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, tbl))
		assert.Equal(t, 1, n, tbl)
	}

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 1, count)
}
