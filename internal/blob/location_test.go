package blob_test

import (
	"errors"
	"testing"

	"vidscribe/internal/blob"
	"vidscribe/internal/services"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want blob.Location
	}{
		{"gs://media/raw/v1.mp4", blob.Location{Scheme: "gs", Bucket: "media", Key: "raw/v1.mp4"}},
		{"S3://vidwise/uploads/a b.mov", blob.Location{Scheme: "s3", Bucket: "vidwise", Key: "uploads/a b.mov"}},
		{"file://local//nested/x.mkv", blob.Location{Scheme: "file", Bucket: "local", Key: "nested/x.mkv"}},
		{"/owner/p/video.mp4", blob.Location{Bucket: "default", Key: "owner/p/video.mp4"}},
		{"  key.mp4 ", blob.Location{Bucket: "default", Key: "key.mp4"}},
	}
	for _, tt := range tests {
		got, err := blob.ParseLocation(tt.raw, "default")
		if err != nil {
			t.Fatalf("ParseLocation(%q) returned error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLocation(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseLocationRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"https://example.com/video.mp4",
		"http://example.com/video.mp4",
		"ftp://host/file",
		"gs://bucket-only",
		"gs:///key",
	} {
		_, err := blob.ParseLocation(raw, "default")
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
	}
	if _, err := blob.ParseLocation("bare.mp4", ""); err == nil {
		t.Fatal("expected bare key without default bucket to fail")
	}
}

func TestLocationString(t *testing.T) {
	loc := blob.Location{Scheme: "gs", Bucket: "vidwise", Key: "o/p/transcripts/v_en.srt"}
	if got := loc.String(); got != "gs://vidwise/o/p/transcripts/v_en.srt" {
		t.Fatalf("unexpected location string %q", got)
	}
	if got := loc.Base(); got != "v_en.srt" {
		t.Fatalf("unexpected base %q", got)
	}
	roundTrip, err := blob.ParseLocation(loc.String(), "")
	if err != nil || roundTrip != loc {
		t.Fatalf("expected round trip, got %+v, %v", roundTrip, err)
	}
}

func TestTranscriptKeys(t *testing.T) {
	key := blob.TranscriptKey("owner", "proj", "vid", "es", "srt")
	if key != "owner/proj/transcripts/vid_es.srt" {
		t.Fatalf("unexpected key %q", key)
	}
	if got := blob.SiblingKey(key, "txt"); got != "owner/proj/transcripts/vid_es.txt" {
		t.Fatalf("unexpected sibling key %q", got)
	}
}
