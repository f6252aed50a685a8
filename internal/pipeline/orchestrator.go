package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/blob"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/services"
	"vidscribe/internal/store"
)

// finalizeTimeout bounds the status writes that close a run. They run on a
// context detached from the run so a cancelled run can still reset its video.
const finalizeTimeout = 30 * time.Second

// Stager prepares the work area of a run.
type Stager interface {
	Stage(ctx context.Context, videoID string, source blob.Location) (*media.WorkArea, error)
}

// Request asks for one video to be transcribed into the listed languages.
type Request struct {
	VideoID        string
	ProjectID      string
	SourceLocation string
	Languages      []string
}

// Options tunes an Orchestrator.
type Options struct {
	// DefaultBucket resolves source locations given as bare keys.
	DefaultBucket     string
	RunTimeout        time.Duration
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
}

// Orchestrator accepts video submissions and runs them in the background.
type Orchestrator struct {
	store      *store.Store
	stager     Stager
	runner     *LanguageRunner
	aggregator *Aggregator
	publisher  Publisher
	heartbeat  *HeartbeatMonitor
	opts       Options
	logger     *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu     sync.Mutex
	tasks  map[string]*Task
	closed bool
	wg     sync.WaitGroup
}

// NewOrchestrator wires an orchestrator. A nil publisher drops events.
func NewOrchestrator(st *store.Store, stager Stager, runner *LanguageRunner, publisher Publisher, opts Options, logger *slog.Logger) *Orchestrator {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:      st,
		stager:     stager,
		runner:     runner,
		aggregator: NewAggregator(st, logger),
		publisher:  publisher,
		heartbeat:  NewHeartbeatMonitor(st, logger, opts.HeartbeatInterval, opts.HeartbeatTimeout),
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "orchestrator"),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		tasks:      make(map[string]*Task),
	}
}

// Heartbeat exposes the monitor so the daemon can run stale reclamation.
func (o *Orchestrator) Heartbeat() *HeartbeatMonitor {
	return o.heartbeat
}

// Submit validates req, moves the video to PROCESSING and starts the run. It
// returns as soon as the run is scheduled. Rejections leave no state behind.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Task, error) {
	req.VideoID = strings.TrimSpace(req.VideoID)
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.SourceLocation = strings.TrimSpace(req.SourceLocation)

	if req.VideoID == "" || req.ProjectID == "" {
		return nil, services.Wrap(services.ErrValidation, "submit", "validate", "video_id and project_id are required", nil)
	}
	if req.SourceLocation == "" {
		return nil, services.Wrap(services.ErrValidation, "submit", "validate", "source location is required", nil)
	}
	for _, lang := range req.Languages {
		if err := language.Validate(lang); err != nil {
			return nil, services.Wrap(services.ErrValidation, "submit", "validate", "invalid language", err)
		}
	}
	source, err := blob.ParseLocation(req.SourceLocation, o.opts.DefaultBucket)
	if err != nil {
		return nil, err
	}

	project, err := o.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, storeFailure("load project", err)
	}
	if project == nil {
		return nil, services.Wrap(services.ErrNotFound, "submit", "load project",
			fmt.Sprintf("project %q not found", req.ProjectID), nil)
	}
	video, err := o.store.GetVideo(ctx, req.VideoID)
	if err != nil {
		return nil, storeFailure("load video", err)
	}
	if video == nil {
		return nil, services.Wrap(services.ErrNotFound, "submit", "load video",
			fmt.Sprintf("video %q not found", req.VideoID), nil)
	}
	if video.ProjectID != project.ID {
		return nil, services.Wrap(services.ErrValidation, "submit", "load video",
			fmt.Sprintf("video %q does not belong to project %q", video.ID, project.ID), nil)
	}

	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	runCtx := services.WithVideoID(o.baseCtx, video.ID)
	runCtx = services.WithProjectID(runCtx, project.ID)
	runCtx = services.WithRequestID(runCtx, requestID)
	var cancel context.CancelFunc
	if o.opts.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, o.opts.RunTimeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}

	task := &Task{
		VideoID:   video.ID,
		ProjectID: project.ID,
		ownerID:   project.OwnerID,
		source:    source,
		languages: language.ExecutionOrder(req.Languages),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		cancel()
		return nil, services.Wrap(services.ErrTransient, "submit", "schedule", "orchestrator is shutting down", nil)
	}
	if _, active := o.tasks[video.ID]; active {
		o.mu.Unlock()
		cancel()
		return nil, services.Wrap(services.ErrConflict, "submit", "schedule",
			fmt.Sprintf("video %q is already processing", video.ID), nil)
	}
	o.tasks[video.ID] = task
	o.wg.Add(1)
	o.mu.Unlock()

	if err := o.store.MarkProcessing(ctx, video.ID, req.SourceLocation); err != nil {
		o.mu.Lock()
		delete(o.tasks, video.ID)
		o.mu.Unlock()
		o.wg.Done()
		cancel()
		return nil, storeFailure("mark processing", err)
	}

	logging.WithContext(runCtx, o.logger).Info("video accepted",
		logging.String(logging.FieldEventType, "video_accepted"),
		logging.String("source", source.String()),
		logging.Any("languages", task.languages),
	)
	go o.execute(runCtx, task)
	return task, nil
}

// Cancel stops the active run of videoID. It reports whether a run was found.
func (o *Orchestrator) Cancel(videoID string) bool {
	o.mu.Lock()
	task, ok := o.tasks[strings.TrimSpace(videoID)]
	o.mu.Unlock()
	if !ok {
		return false
	}
	task.Cancel()
	return true
}

// Task returns the active task of videoID, if any.
func (o *Orchestrator) Task(videoID string) (*Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	task, ok := o.tasks[videoID]
	return task, ok
}

// ActiveVideoIDs lists videos with a run in this process.
func (o *Orchestrator) ActiveVideoIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.tasks))
	for id := range o.tasks {
		ids = append(ids, id)
	}
	return ids
}

// ActiveWorkAreas lists the work area roots of running tasks.
func (o *Orchestrator) ActiveWorkAreas() map[string]struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	roots := make(map[string]struct{}, len(o.tasks))
	for _, task := range o.tasks {
		if root := task.workAreaRoot(); root != "" {
			roots[root] = struct{}{}
		}
	}
	return roots
}

// Shutdown refuses new submissions, cancels every run and waits for them to
// reset their videos. It returns ctx.Err() if ctx ends first.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.baseCancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) release(task *Task) {
	o.mu.Lock()
	if current, ok := o.tasks[task.VideoID]; ok && current == task {
		delete(o.tasks, task.VideoID)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) execute(ctx context.Context, task *Task) {
	defer o.wg.Done()
	defer close(task.done)
	defer o.release(task)
	defer task.cancel()

	logger := logging.WithContext(ctx, o.logger)
	report := Report{VideoID: task.VideoID, ProjectID: task.ProjectID, StartedAt: time.Now()}

	var hbWG sync.WaitGroup
	hbCtx, hbCancel := context.WithCancel(ctx)
	hbWG.Add(1)
	go o.heartbeat.StartLoop(hbCtx, &hbWG, task.VideoID)
	stopHeartbeat := func() {
		hbCancel()
		hbWG.Wait()
	}

	area, err := o.stager.Stage(services.WithStage(ctx, "stage"), task.VideoID, task.source)
	if err != nil {
		stopHeartbeat()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = runInterrupted(ctxErr)
		}
		task.finish(o.abort(ctx, logger, report, nil, err))
		return
	}
	task.setWorkAreaRoot(area.Root)
	defer area.Close()

	for _, lang := range task.languages {
		if ctx.Err() != nil {
			break
		}
		transcript, runErr := o.runner.Run(ctx, Job{
			Area:      area,
			Language:  lang,
			VideoID:   task.VideoID,
			ProjectID: task.ProjectID,
			OwnerID:   task.ownerID,
		})
		report.Languages = append(report.Languages, LanguageResult{Language: lang, Transcript: transcript, Err: runErr})
		if runErr == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if fatalToRun(lang, runErr) {
			stopHeartbeat()
			task.finish(o.abort(ctx, logger, report, area, runErr))
			return
		}
		logging.WarnWithContext(logger, "language skipped", "language_failed",
			logging.String(logging.FieldLanguage, lang),
			logging.String(logging.FieldStage, StageOf(runErr)),
			logging.Error(runErr),
			logging.String(logging.FieldImpact, "video completes without this language"),
		)
	}
	stopHeartbeat()

	if err := ctx.Err(); err != nil {
		task.finish(o.abort(ctx, logger, report, area, runInterrupted(err)))
		return
	}
	task.finish(o.complete(ctx, logger, report, area))
}

// storeFailure marks a store error from submission so callers can retry it.
// A row that vanished mid-submission is reported as not found.
func storeFailure(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return services.Wrap(services.ErrNotFound, "submit", op, "video no longer exists", err)
	}
	return services.Wrap(services.ErrTransient, "submit", op, "store unavailable", err)
}

// fatalToRun reports failures that no later language could recover from.
func fatalToRun(lang string, err error) bool {
	if errors.Is(err, ErrNoSegments) {
		return true
	}
	return language.IsBaseline(lang) && StageOf(err) == StageExtract
}

func runInterrupted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "run", "execute", "run timed out", err)
	}
	return services.Wrap(services.ErrTransient, "run", "execute", "run cancelled", err)
}

func (o *Orchestrator) complete(ctx context.Context, logger *slog.Logger, report Report, area *media.WorkArea) Report {
	if err := area.ReleaseVideo(); err != nil {
		logger.Warn("failed to release staged video", logging.Error(err))
	}
	_ = area.Close()

	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err := o.store.SetVideoStatus(finalCtx, report.VideoID, store.VideoDone); err != nil {
		report.Err = fmt.Errorf("mark video done: %w", err)
		report.Status = store.VideoProcessing
		report.FinishedAt = time.Now()
		logger.Error("failed to mark video done; heartbeat reclaim will retry it",
			logging.Error(err),
			logging.String(logging.FieldEventType, "video_status_failed"),
			logging.String(logging.FieldErrorHint, "check database access"),
		)
		return report
	}
	report.Status = store.VideoDone

	completed, err := o.aggregator.Recompute(finalCtx, report.ProjectID)
	if err != nil {
		logging.WarnWithContext(logger, "project recompute failed", "project_recompute_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "project status refreshes on the next finished video"),
		)
	}
	report.ProjectCompleted = completed
	report.FinishedAt = time.Now()

	if err := o.publisher.Publish(finalCtx, eventFromReport(report)); err != nil {
		logging.WarnWithContext(logger, "completion event not published", "event_publish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "downstream indexing not notified"),
		)
	}

	logger.Info("video done",
		logging.String(logging.FieldEventType, "video_done"),
		logging.Int("succeeded", len(report.Succeeded())),
		logging.Int("failed", len(report.Failed())),
		logging.Bool("project_completed", report.ProjectCompleted),
		logging.Duration("duration", report.Duration()),
	)
	return report
}

func (o *Orchestrator) abort(ctx context.Context, logger *slog.Logger, report Report, area *media.WorkArea, cause error) Report {
	if area != nil {
		_ = area.Close()
	}
	report.Err = cause
	report.Status = store.VideoPending

	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := o.store.SetVideoStatus(finalCtx, report.VideoID, store.VideoPending); err != nil {
		report.Status = store.VideoProcessing
		logger.Error("failed to reset video; heartbeat reclaim will retry it",
			logging.Error(err),
			logging.String(logging.FieldEventType, "video_status_failed"),
			logging.String(logging.FieldErrorHint, "check database access"),
		)
	}
	report.FinishedAt = time.Now()

	logger.Error("video run failed; video reset to pending",
		logging.Error(cause),
		logging.String(logging.FieldEventType, "video_failed"),
		logging.Int("succeeded", len(report.Succeeded())),
		logging.Int("failed", len(report.Failed())),
		logging.String(logging.FieldErrorHint, "resubmit the video once the cause is fixed"),
	)
	return report
}

// Task is the handle of one background run.
type Task struct {
	VideoID   string
	ProjectID string

	ownerID   string
	source    blob.Location
	languages []string
	cancel    context.CancelFunc
	done      chan struct{}

	mu     sync.Mutex
	root   string
	report Report
}

// Languages returns the execution order of the run.
func (t *Task) Languages() []string {
	return append([]string(nil), t.languages...)
}

// Done is closed when the run has finished and its video status is final.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Report, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.report, nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Cancel stops the run. The video is reset to PENDING.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) finish(report Report) {
	t.mu.Lock()
	t.report = report
	t.mu.Unlock()
}

func (t *Task) setWorkAreaRoot(root string) {
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
}

func (t *Task) workAreaRoot() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}
