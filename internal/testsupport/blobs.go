package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"vidscribe/internal/blob"
	"vidscribe/internal/config"
)

// SeedSourceVideo writes a fake video object into the filesystem blob store
// configured by cfg and returns its location.
func SeedSourceVideo(t testing.TB, cfg *config.Config, key string) blob.Location {
	t.Helper()

	WriteFile(t, filepath.Join(cfg.Storage.RootDir, cfg.Storage.Bucket, filepath.FromSlash(key)), 2048)
	return blob.Location{Scheme: blob.SchemeFile, Bucket: cfg.Storage.Bucket, Key: key}
}

// FakeFFmpeg returns a command runner that mimics ffmpeg by writing a small
// file to the last argument. Calls are counted in the returned counter.
func FakeFFmpeg(t testing.TB) (func(ctx context.Context, name string, args ...string) ([]byte, error), *Counter) {
	t.Helper()

	counter := &Counter{}
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		counter.Inc()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dest := args[len(args)-1]
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		return nil, os.WriteFile(dest, []byte("RIFFfakeWAVE"), 0o644)
	}, counter
}

// Counter is a concurrency-safe call counter for fakes.
type Counter struct {
	mu sync.Mutex
	n  int
}

// Inc increments the counter.
func (c *Counter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// MustBlobStore opens the blob store described by cfg.
func MustBlobStore(t testing.TB, cfg *config.Config) blob.Store {
	t.Helper()

	store, closeFn, err := blob.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("blob.New: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })
	return store
}
