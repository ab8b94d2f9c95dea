package ports

import (
	"context"
	"io"
	"time"
)

// BlobStore keeps uploaded file bytes under slash-separated keys.
type BlobStore interface {
	StoreBlob(ctx context.Context, key string, r io.Reader) (int64, error)
	GetBlob(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteBlob(ctx context.Context, key string) error
	BlobExists(ctx context.Context, key string) (bool, error)
	ListBlobs(ctx context.Context, prefix string) ([]string, error)
	GetBlobMetadata(ctx context.Context, key string) (*BlobMetadata, error)
}

// BlobMetadata represents metadata for stored blobs
type BlobMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}
