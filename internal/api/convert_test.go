package api

import (
	"encoding/json"
	"testing"
	"time"

	"vidscribe/internal/deps"
)

func TestNewProcessVideoResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewProcessVideoResponse("v1"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"video_id":"v1","transcripts":[],"status":"processing_started"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestFromDependencyStatuses(t *testing.T) {
	got := FromDependencyStatuses([]deps.Status{{Name: "FFmpeg", Command: "/usr/bin/ffmpeg", Available: true}})
	if len(got) != 1 || got[0].Name != "FFmpeg" || !got[0].Available {
		t.Fatalf("unexpected conversion: %+v", got)
	}
}

func TestFormatTime(t *testing.T) {
	if FormatTime(time.Time{}) != "" {
		t.Fatal("expected empty string for zero time")
	}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("X", 3600))
	if got := FormatTime(ts); got != "2026-01-02T02:04:05.006Z" {
		t.Fatalf("unexpected format: %q", got)
	}
}
