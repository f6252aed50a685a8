package daemon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"vidscribe/internal/daemon"
	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/store"
	"vidscribe/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	blobs := testsupport.MustBlobStore(t, cfg)
	logger := logging.NewNop()
	orch, err := pipeline.New(cfg, st, blobs, nil, logger)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	d, err := daemon.New(cfg, st, orch, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, st
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.BrokerActive {
		t.Fatal("expected broker to be inactive without a url")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	resp, err := http.Get("http://" + d.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "healthy" {
		t.Fatalf("unexpected health: %v", health)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	if d.Addr() != "" {
		t.Fatalf("expected listener to be released, got %q", d.Addr())
	}
}

func TestDaemonStartResetsStuckVideos(t *testing.T) {
	d, st := newDaemon(t)
	t.Cleanup(d.Stop)
	testsupport.SeedProject(t, st, "p1", "u1")
	testsupport.SeedVideo(t, st, "v1", "p1")

	ctx := context.Background()
	if err := st.MarkProcessing(ctx, "v1", "gs://bucket/v1.mp4"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	video, err := st.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if video.Status != store.VideoPending {
		t.Fatalf("expected stuck video reset to PENDING, got %s", video.Status)
	}
}
