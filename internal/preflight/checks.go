package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vidscribe/internal/blob"
	"vidscribe/internal/broker"
	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/services/openai"
)

// HealthChecker is implemented by adapters that can verify their endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckTranslation verifies that the translation endpoint is reachable and the
// key is valid. It uses a 30-second timeout and a single attempt.
func CheckTranslation(ctx context.Context, checker HealthChecker) Result {
	const name = "Translation API"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTranslationFromConfig builds the configured translator and checks it.
func CheckTranslationFromConfig(ctx context.Context, cfg *config.Config) Result {
	if strings.TrimSpace(cfg.Translation.APIKey) == "" {
		return Result{Name: "Translation API", Detail: "API key missing"}
	}
	translator := openai.NewTranslator(openai.Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		MaxRetries:     1,
	})
	return CheckTranslation(ctx, translator)
}

// CheckBroker opens and closes one AMQP connection.
func CheckBroker(url string) Result {
	const name = "RabbitMQ"

	if strings.TrimSpace(url) == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	client, err := broker.Dial(url)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("connect failed (%v)", err)}
	}
	if err := client.Close(); err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (close: %v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckStorage verifies that the configured blob backend can be opened. The
// filesystem backend additionally needs a writable root directory.
func CheckStorage(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("Blob storage (%s)", cfg.Storage.Backend)

	if cfg.Storage.Backend == config.StorageFilesystem {
		if err := os.MkdirAll(cfg.Storage.RootDir, 0o755); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Storage.RootDir, err)}
		}
		access := CheckDirectoryAccess(name, cfg.Storage.RootDir)
		if !access.Passed {
			return access
		}
	}

	store, closeFn, err := blob.New(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	defer closeFn()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bucket %q via %s://", cfg.Storage.Bucket, store.Scheme())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
// Both the daemon and the CLI use this to avoid duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for source inspection",
		},
	}
	if cfg.Transcription.Engine == config.EngineWhisperX {
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven transcription",
		})
	}
	return deps.CheckBinaries(requirements)
}

// summarizeAPIError produces a human-readable summary for health check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
