package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"vidscribe/internal/blob"
	"vidscribe/internal/broker"
	"vidscribe/internal/config"
	"vidscribe/internal/daemon"
	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/preflight"
	"vidscribe/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the vidscribe daemon runtime loop and blocks until SIGINT or
// SIGTERM, or until cmdCtx is cancelled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	for _, failed := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldImpact, "videos depending on this check will fail"),
		)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "vidscribed.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}

	blobs, closeBlobs, err := blob.New(signalCtx, cfg)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("open blob storage: %w", err)
	}
	defer closeBlobs()

	var (
		client    *broker.Client
		publisher pipeline.Publisher
	)
	if cfg.BrokerEnabled() {
		client, err = broker.Dial(cfg.Broker.URL)
		if err != nil {
			_ = st.Close()
			return fmt.Errorf("connect broker: %w", err)
		}
		publisher = broker.NewPublisher(client, cfg.Broker.EventQueue, logger)
	}

	orchestrator, err := pipeline.New(cfg, st, blobs, publisher, logger)
	if err != nil {
		_ = st.Close()
		if client != nil {
			_ = client.Close()
		}
		return fmt.Errorf("create pipeline: %w", err)
	}

	d, err := daemon.New(cfg, st, orchestrator, client, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check for another running daemon and database access"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("vidscribe daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("storage_backend", cfg.Storage.Backend),
		logging.String("bucket", cfg.Storage.Bucket),
		logging.String("transcription_engine", cfg.Transcription.Engine),
		logging.Bool("translation_enabled", cfg.Translation.Enabled),
		logging.Bool("translation_key_present", strings.TrimSpace(cfg.Translation.APIKey) != ""),
		logging.Bool("broker_enabled", cfg.BrokerEnabled()),
		logging.Bool("whisperx_cuda", cfg.Transcription.WhisperXCUDAEnabled),
		logging.String("whisperx_vad_method", cfg.Transcription.WhisperXVADMethod),
	}
	for _, status := range preflight.CheckSystemDeps(cfg) {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
