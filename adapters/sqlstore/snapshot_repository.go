package sqlstore

import (
	"context"

	"dataviz/domain/core"
	"dataviz/domain/dataset"
	"dataviz/internal/errors"
	"dataviz/ports"

	"github.com/jmoiron/sqlx"
)

type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Create inserts a new snapshot
func (r *snapshotRepository) Create(ctx context.Context, s *dataset.Snapshot) error {
	query := r.db.Rebind(`INSERT INTO snapshots (id, name, data_json, row_count, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.Data, s.RowCount, s.CreatedAt)
	if err != nil {
		return errors.DatabaseError("failed to create snapshot", err)
	}
	return nil
}

// GetByID retrieves a snapshot including its data
func (r *snapshotRepository) GetByID(ctx context.Context, id core.SnapshotID) (*dataset.Snapshot, error) {
	query := r.db.Rebind(`SELECT id, name, data_json, row_count, created_at
		FROM snapshots WHERE id = ?`)

	var s dataset.Snapshot
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, notFoundOr(err, "snapshot "+id.String(), "get snapshot")
	}
	return &s, nil
}

// List returns snapshot headers, newest first
func (r *snapshotRepository) List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Snapshot, error) {
	where, args := whereClause(filter, "name", false)
	query := r.db.Rebind(`SELECT id, name, row_count, created_at FROM snapshots` +
		where + ` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, filter.EffectiveLimit())

	snapshots := []*dataset.Snapshot{}
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list snapshots", err)
	}
	return snapshots, nil
}

// Delete removes a snapshot
func (r *snapshotRepository) Delete(ctx context.Context, id core.SnapshotID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM snapshots WHERE id = ?`), id)
	if err != nil {
		return errors.DatabaseError("failed to delete snapshot", err)
	}
	return expectAffected(result, "snapshot "+id.String())
}
