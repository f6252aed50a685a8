package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// GCS stores objects in Google Cloud Storage using application default credentials.
type GCS struct {
	client *storage.Client
}

// NewGCS creates a client from the ambient credentials.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Scheme() string { return SchemeGCS }

func (g *GCS) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, g.wrapErr("get", bucket, key, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gcs get gs://%s/%s: read: %w", bucket, key, err)
	}
	return data, nil
}

func (g *GCS) Download(ctx context.Context, bucket, key, dest string) error {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return g.wrapErr("download", bucket, key, err)
	}
	defer reader.Close()
	return writeStream(reader, dest)
}

func (g *GCS) Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error {
	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = metadata
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("gcs put gs://%s/%s: write: %w", bucket, key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("gcs put gs://%s/%s: close: %w", bucket, key, err)
	}
	return nil
}

func (g *GCS) wrapErr(op, bucket, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("gcs %s gs://%s/%s: %w", op, bucket, key, ErrNotExist)
	}
	return fmt.Errorf("gcs %s gs://%s/%s: %w", op, bucket, key, err)
}

// writeStream copies src into dest through a temp file so a partial download
// never appears at dest.
func writeStream(src io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure download dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("copy download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close download: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}
