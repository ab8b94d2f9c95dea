package sqlstore

import (
	"context"

	"dataviz/domain/core"
	"dataviz/domain/dataset"
	"dataviz/internal/errors"
	"dataviz/ports"

	"github.com/jmoiron/sqlx"
)

const uploadColumns = `id, name, file_path, file_size, checksum, row_count, column_count, processed, uploaded_at`

type uploadRepository struct {
	db *sqlx.DB
}

// NewUploadRepository creates a new upload repository
func NewUploadRepository(db *sqlx.DB) ports.UploadRepository {
	return &uploadRepository{db: db}
}

// Create inserts a new upload record
func (r *uploadRepository) Create(ctx context.Context, u *dataset.Upload) error {
	query := r.db.Rebind(`INSERT INTO uploads (` + uploadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.FilePath, u.FileSize, u.Checksum,
		u.RowCount, u.Columns, u.Processed, u.UploadedAt,
	)
	if err != nil {
		return errors.DatabaseError("failed to create upload", err)
	}
	return nil
}

// GetByID retrieves an upload record by its ID
func (r *uploadRepository) GetByID(ctx context.Context, id core.UploadID) (*dataset.Upload, error) {
	query := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM uploads WHERE id = ?`)

	var u dataset.Upload
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, notFoundOr(err, "upload "+id.String(), "get upload")
	}
	return &u, nil
}

// List returns upload records, newest first
func (r *uploadRepository) List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Upload, error) {
	where, args := whereClause(filter, "name", true)
	query := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM uploads` +
		where + ` ORDER BY uploaded_at DESC LIMIT ?`)
	args = append(args, filter.EffectiveLimit())

	uploads := []*dataset.Upload{}
	if err := r.db.SelectContext(ctx, &uploads, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list uploads", err)
	}
	return uploads, nil
}

// Delete removes an upload record
func (r *uploadRepository) Delete(ctx context.Context, id core.UploadID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM uploads WHERE id = ?`), id)
	if err != nil {
		return errors.DatabaseError("failed to delete upload", err)
	}
	return expectAffected(result, "upload "+id.String())
}
