package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidscribe/internal/config"
)

// ErrNotExist reports a missing object.
var ErrNotExist = errors.New("object does not exist")

// Content types used for transcript artifacts.
const (
	ContentTypeSRT  = "application/x-subrip"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Store reads and writes objects.
type Store interface {
	// Scheme is the URL scheme of locations produced by this store.
	Scheme() string
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Download streams an object to dest, creating parent directories.
	Download(ctx context.Context, bucket, key, dest string) error
	Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error
}

// New builds the configured backend wrapped with upload retries. The returned
// close function releases backend clients.
func New(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("blob: config is nil")
	}
	var (
		backend Store
		closeFn = func() error { return nil }
	)
	switch strings.ToLower(cfg.Storage.Backend) {
	case config.StorageGCS:
		gcs, err := NewGCS(ctx)
		if err != nil {
			return nil, nil, err
		}
		backend = gcs
		closeFn = gcs.Close
	case config.StorageFilesystem:
		fsStore, err := NewFilesystem(cfg.Storage.RootDir)
		if err != nil {
			return nil, nil, err
		}
		backend = fsStore
	default:
		return nil, nil, fmt.Errorf("blob: unsupported backend %q", cfg.Storage.Backend)
	}
	return WithRetry(backend, cfg.Storage.UploadRetries), closeFn, nil
}

// LocationOf renders the location of key in bucket for store.
func LocationOf(store Store, bucket, key string) Location {
	return Location{Scheme: store.Scheme(), Bucket: bucket, Key: key}
}
