package session

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"dataviz/internal/errors"
	"dataviz/ports"
)

// DatasetPrefix is the key prefix for uploaded source files.
const DatasetPrefix = "datasets/"

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// LocalBlobStore implements ports.BlobStore on the local filesystem.
type LocalBlobStore struct {
	basePath string
}

// NewLocalBlobStore creates a new local blob store rooted at basePath.
func NewLocalBlobStore(basePath string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.StorageError("failed to create upload directory", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.StorageError("failed to resolve upload directory", err)
	}
	return &LocalBlobStore{basePath: abs}, nil
}

var _ ports.BlobStore = (*LocalBlobStore)(nil)

// Root is the directory blobs are written under.
func (lbs *LocalBlobStore) Root() string {
	return lbs.basePath
}

// StoreBlob writes r to key through a temp file so readers never see a
// partial blob.
func (lbs *LocalBlobStore) StoreBlob(ctx context.Context, key string, r io.Reader) (int64, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.StorageError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, errors.StorageError("failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, errors.StorageError(fmt.Sprintf("failed to write blob %s", key), err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return 0, errors.StorageError(fmt.Sprintf("failed to write blob %s", key), err)
	}
	return n, nil
}

// GetBlob retrieves data from local filesystem
func (lbs *LocalBlobStore) GetBlob(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("blob " + key)
		}
		return nil, errors.StorageError(fmt.Sprintf("failed to open blob %s", key), err)
	}

	return file, nil
}

// DeleteBlob removes a blob; deleting a missing blob is not an error.
func (lbs *LocalBlobStore) DeleteBlob(ctx context.Context, key string) error {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return errors.StorageError(fmt.Sprintf("failed to delete blob %s", key), err)
	}

	return nil
}

// BlobExists checks if a blob exists
func (lbs *LocalBlobStore) BlobExists(ctx context.Context, key string) (bool, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.StorageError("failed to check blob existence", err)
}

// ListBlobs lists blob keys starting with prefix. Temp files are skipped.
func (lbs *LocalBlobStore) ListBlobs(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.Walk(lbs.basePath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".upload-") {
			return nil
		}

		relPath, err := filepath.Rel(lbs.basePath, p)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(relPath)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})

	if err != nil {
		return nil, errors.StorageError("failed to list blobs", err)
	}

	return keys, nil
}

// GetBlobMetadata returns metadata for a blob
func (lbs *LocalBlobStore) GetBlobMetadata(ctx context.Context, key string) (*ports.BlobMetadata, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("blob " + key)
		}
		return nil, errors.StorageError("failed to get blob info", err)
	}

	contentType := contentTypes[path.Ext(key)]
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &ports.BlobMetadata{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentType,
		LastModified: stat.ModTime(),
	}, nil
}

// keyToPath maps a slash-separated key under basePath, refusing keys that
// would escape it.
func (lbs *LocalBlobStore) keyToPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean != "/"+key {
		return "", errors.InvalidInput(fmt.Sprintf("invalid blob key %q", key))
	}
	return filepath.Join(lbs.basePath, filepath.FromSlash(clean[1:])), nil
}

// DatasetKey is the blob key for an uploaded file.
func DatasetKey(id, ext string) string {
	return DatasetPrefix + id + ext
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
