package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"vidscribe/internal/broker"
	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/preflight"
	"vidscribe/internal/store"
)

// shutdownTimeout bounds how long Stop waits for running videos to wind down.
const shutdownTimeout = 30 * time.Second

// Daemon coordinates the background processing services and enforces single-instance execution.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *store.Store
	orchestrator *pipeline.Orchestrator
	broker       *broker.Client
	api          *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	BrokerActive bool
	ActiveVideos []string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies. client may be nil
// when no broker is configured.
func New(cfg *config.Config, st *store.Store, orchestrator *pipeline.Orchestrator, client *broker.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || orchestrator == nil {
		return nil, errors.New("daemon requires config, store, and orchestrator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "vidscribed.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "daemon"),
		store:        st,
		orchestrator: orchestrator,
		broker:       client,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and launches the API server, the broker
// consumer, and the watchdog.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vidscribe daemon instance is already running")
	}

	// No task of this process owns a PROCESSING video yet.
	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reset stuck videos: %w", err)
	}
	if reset > 0 {
		d.logger.Info("reset stuck videos",
			logging.Int64("count", reset),
			logging.String(logging.FieldEventType, "startup_reset"),
		)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	if d.broker != nil {
		consumer := broker.NewConsumer(d.broker, d.cfg.Broker.CommandQueue, d.orchestrator, d.logger)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := consumer.Run(d.ctx); err != nil {
				logging.WarnWithContext(d.logger, "broker consumer stopped", "broker_consumer_stopped",
					logging.String(logging.FieldImpact, "queued process-video commands are not consumed"),
					logging.String(logging.FieldErrorHint, "check RabbitMQ connectivity and restart the daemon"),
					logging.Error(err),
				)
			}
		}()
	}

	d.wg.Add(1)
	go d.watchdog(d.ctx)

	d.running.Store(true)
	d.logger.Info("vidscribe daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.orchestrator.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("orchestrator shutdown incomplete", logging.Error(err))
	}
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("vidscribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.broker != nil {
		errs = append(errs, d.broker.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

// Addr returns the address the API server listens on, or "" when it is not running.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		BrokerActive: d.broker != nil,
		ActiveVideos: d.orchestrator.ActiveVideoIDs(),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
}

// watchdog reclaims stale PROCESSING videos and removes abandoned work areas
// every heartbeat interval.
func (d *Daemon) watchdog(ctx context.Context) {
	defer d.wg.Done()

	interval := d.cfg.HeartbeatInterval()
	if interval <= 0 {
		return
	}
	d.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *Daemon) sweep(ctx context.Context) {
	if _, err := d.orchestrator.Heartbeat().ReclaimStale(ctx, d.orchestrator.ActiveVideoIDs()); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(d.logger, "stale video reclaim failed", "heartbeat_reclaim_failed",
			logging.String(logging.FieldImpact, "videos of crashed runs stay PROCESSING until the next sweep"),
			logging.Error(err),
		)
	}

	result := media.CleanStale(ctx, d.cfg.Paths.WorkDir, d.cfg.StaleWorkDirAge(), d.orchestrator.ActiveWorkAreas(), d.logger)
	for _, failure := range result.Errors {
		d.logger.Warn("work area cleanup failed",
			logging.String("path", failure.Path),
			logging.Error(failure.Error),
		)
	}
}
