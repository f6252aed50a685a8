package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const metadataSuffix = ".meta.json"

// Filesystem stores objects as files under root/bucket/key. Content type and
// metadata are written to a sidecar file next to the object.
type Filesystem struct {
	root string
}

// NewFilesystem creates the root directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("filesystem blob store: root directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem blob store: ensure root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

// Root returns the directory holding all buckets.
func (f *Filesystem) Root() string { return f.root }

func (f *Filesystem) Scheme() string { return SchemeFile }

func (f *Filesystem) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, f.wrapErr("get", bucket, key, err)
	}
	return data, nil
}

func (f *Filesystem) Download(ctx context.Context, bucket, key, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.objectPath(bucket, key)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return f.wrapErr("download", bucket, key, err)
	}
	defer src.Close()
	return writeStream(src, dest)
}

func (f *Filesystem) Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("filesystem put %s/%s: %w", bucket, key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("filesystem put %s/%s: %w", bucket, key, err)
	}
	sidecar, err := json.Marshal(Attributes{ContentType: contentType, Metadata: metadata})
	if err != nil {
		return fmt.Errorf("filesystem put %s/%s: encode attributes: %w", bucket, key, err)
	}
	if err := os.WriteFile(path+metadataSuffix, sidecar, 0o644); err != nil {
		return fmt.Errorf("filesystem put %s/%s: write attributes: %w", bucket, key, err)
	}
	return nil
}

// Attributes describes the stored content type and metadata of an object.
type Attributes struct {
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Attributes returns the content type and metadata recorded for an object.
func (f *Filesystem) Attributes(bucket, key string) (Attributes, error) {
	path, err := f.objectPath(bucket, key)
	if err != nil {
		return Attributes{}, err
	}
	data, err := os.ReadFile(path + metadataSuffix)
	if err != nil {
		return Attributes{}, f.wrapErr("attributes", bucket, key, err)
	}
	var attrs Attributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return Attributes{}, fmt.Errorf("filesystem attributes %s/%s: %w", bucket, key, err)
	}
	return attrs, nil
}

func (f *Filesystem) objectPath(bucket, key string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if bucket == "" || key == "" {
		return "", fmt.Errorf("filesystem blob store: bucket and key required")
	}
	if strings.Contains(bucket, "/") || strings.Contains(bucket, "..") {
		return "", fmt.Errorf("filesystem blob store: invalid bucket %q", bucket)
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("filesystem blob store: key %q escapes bucket", key)
	}
	return filepath.Join(f.root, bucket, cleaned), nil
}

func (f *Filesystem) wrapErr(op, bucket, key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filesystem %s %s/%s: %w", op, bucket, key, ErrNotExist)
	}
	return fmt.Errorf("filesystem %s %s/%s: %w", op, bucket, key, err)
}
