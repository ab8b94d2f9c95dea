package ports

import (
	"context"

	"dataviz/domain/core"
	"dataviz/domain/dataset"
)

// SnapshotRepository stores named table snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, s *dataset.Snapshot) error
	GetByID(ctx context.Context, id core.SnapshotID) (*dataset.Snapshot, error)
	// List returns snapshots newest first without their data.
	List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Snapshot, error)
	Delete(ctx context.Context, id core.SnapshotID) error
}

// UploadRepository stores the records of processed uploads.
type UploadRepository interface {
	Create(ctx context.Context, u *dataset.Upload) error
	GetByID(ctx context.Context, id core.UploadID) (*dataset.Upload, error)
	// List returns uploads newest first.
	List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Upload, error)
	Delete(ctx context.Context, id core.UploadID) error
}
