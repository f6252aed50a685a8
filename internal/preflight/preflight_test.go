package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/config"
	"vidscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type checkerFunc func(context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestCheckTranslation(t *testing.T) {
	ok := CheckTranslation(context.Background(), checkerFunc(func(context.Context) error { return nil }))
	if !ok.Passed {
		t.Fatalf("expected pass, got: %s", ok.Detail)
	}

	slow := CheckTranslation(context.Background(), checkerFunc(func(context.Context) error {
		return context.DeadlineExceeded
	}))
	if slow.Passed || slow.Detail != "health check timed out (API unresponsive)" {
		t.Fatalf("unexpected timeout result: %+v", slow)
	}

	bad := CheckTranslation(context.Background(), checkerFunc(func(context.Context) error {
		return errors.New("401 invalid key")
	}))
	if bad.Passed || bad.Detail != "401 invalid key" {
		t.Fatalf("unexpected failure result: %+v", bad)
	}
}

func TestCheckTranslationFromConfigRequiresKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Translation.APIKey = ""
	result := CheckTranslationFromConfig(context.Background(), cfg)
	if result.Passed || result.Detail != "API key missing" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckBrokerMissingURL(t *testing.T) {
	if result := CheckBroker(" "); result.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestCheckStorageFilesystem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckStorage(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckSystemDepsFollowsEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected ffmpeg, ffprobe and uvx, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Available {
			t.Fatalf("expected stub %s to be available: %s", s.Name, s.Detail)
		}
	}

	cfg.Transcription.Engine = config.EngineOpenAI
	if got := len(CheckSystemDeps(cfg)); got != 2 {
		t.Fatalf("openai engine should not need uvx, got %d requirements", got)
	}
}

func TestRunAllReportsMissingDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Translation.Enabled = false

	results := RunAll(context.Background(), cfg)
	failed := Failed(results)
	if len(failed) != 2 {
		t.Fatalf("expected work and log directory failures, got %+v", failed)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if failed := Failed(RunAll(context.Background(), cfg)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}
