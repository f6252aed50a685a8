package blob_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/blob"
	"vidscribe/internal/testsupport"
)

func TestFilesystemPutGetDownload(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	ctx := context.Background()
	meta := map[string]string{"video_id": "v1", "language": "en"}
	if err := store.Put(ctx, "vidwise", "o/p/transcripts/v1_en.srt", []byte("1\n"), blob.ContentTypeSRT, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := store.Get(ctx, "vidwise", "o/p/transcripts/v1_en.srt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "1\n" {
		t.Fatalf("unexpected data %q", data)
	}

	attrs, err := store.Attributes("vidwise", "o/p/transcripts/v1_en.srt")
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.ContentType != blob.ContentTypeSRT || attrs.Metadata["video_id"] != "v1" {
		t.Fatalf("unexpected attributes %+v", attrs)
	}

	dest := filepath.Join(t.TempDir(), "nested", "copy.srt")
	if err := store.Download(ctx, "vidwise", "o/p/transcripts/v1_en.srt", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	copied, err := os.ReadFile(dest)
	if err != nil || string(copied) != "1\n" {
		t.Fatalf("unexpected download %q, %v", copied, err)
	}
	if store.Scheme() != blob.SchemeFile {
		t.Fatalf("unexpected scheme %q", store.Scheme())
	}
}

func TestFilesystemMissingObject(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	_, err = store.Get(context.Background(), "vidwise", "missing.mp4")
	if !errors.Is(err, blob.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	err = store.Download(context.Background(), "vidwise", "missing.mp4", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, blob.ErrNotExist) {
		t.Fatalf("expected ErrNotExist from Download, got %v", err)
	}
}

func TestFilesystemRejectsEscapingKeys(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "vidwise", "../outside.txt", []byte("x"), blob.ContentTypeText, nil); err == nil {
		t.Fatal("expected escaping key to be rejected")
	}
	if err := store.Put(ctx, "../up", "k.txt", []byte("x"), blob.ContentTypeText, nil); err == nil {
		t.Fatal("expected escaping bucket to be rejected")
	}
}

func TestNewUsesConfiguredFilesystemBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, closeFn, err := blob.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()
	if store.Scheme() != blob.SchemeFile {
		t.Fatalf("expected filesystem backend, got scheme %q", store.Scheme())
	}
	if err := store.Put(context.Background(), cfg.Storage.Bucket, "k.txt", []byte("hi"), blob.ContentTypeText, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Storage.RootDir, cfg.Storage.Bucket, "k.txt")); err != nil {
		t.Fatalf("expected object on disk: %v", err)
	}
}
