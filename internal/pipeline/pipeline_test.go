package pipeline_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"vidscribe/internal/blob"
	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/store"
	"vidscribe/internal/subtitles"
	"vidscribe/internal/testsupport"
)

const waitTimeout = 10 * time.Second

type harness struct {
	cfg       *config.Config
	store     *store.Store
	blobs     blob.Store
	fs        *blob.Filesystem
	orch      *pipeline.Orchestrator
	source    blob.Location
	publisher *recordingPublisher
	ffmpeg    *testsupport.Counter
}

type harnessOptions struct {
	runner     media.CommandRunner
	runTimeout time.Duration
}

type harnessOption func(*harnessOptions)

// failExtractionFor makes the fake ffmpeg fail for the listed languages.
func failExtractionFor(langs ...string) harnessOption {
	return func(o *harnessOptions) {
		inner := o.runner
		o.runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			dest := args[len(args)-1]
			for _, lang := range langs {
				if strings.Contains(dest, "lang-"+lang) {
					return []byte("conversion failed"), errors.New("exit status 1")
				}
			}
			return inner(ctx, name, args...)
		}
	}
}

func withRunTimeout(d time.Duration) harnessOption {
	return func(o *harnessOptions) { o.runTimeout = d }
}

func newHarness(t *testing.T, transcriber services.Transcriber, translator services.Translator, opts ...harnessOption) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	blobs := testsupport.MustBlobStore(t, cfg)
	fsStore, err := blob.NewFilesystem(cfg.Storage.RootDir)
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	runner, counter := testsupport.FakeFFmpeg(t)
	o := &harnessOptions{runner: runner, runTimeout: time.Minute}
	for _, opt := range opts {
		opt(o)
	}

	testsupport.SeedProject(t, st, "p1", "u1")
	testsupport.SeedVideo(t, st, "v1", "p1")
	source := testsupport.SeedSourceVideo(t, cfg, "uploads/v1.mp4")

	logger := logging.NewNop()
	publisher := &recordingPublisher{}
	languageRunner := pipeline.NewLanguageRunner(pipeline.RunnerDeps{
		Extractor:   media.NewExtractor("ffmpeg", o.runner),
		Transcriber: transcriber,
		Translator:  translator,
		Blobs:       blobs,
		Bucket:      cfg.Storage.Bucket,
		Transcripts: st,
	}, logger)
	orch := pipeline.NewOrchestrator(st, media.NewStager(blobs, cfg.Paths.WorkDir, nil, logger), languageRunner, publisher, pipeline.Options{
		DefaultBucket: cfg.Storage.Bucket,
		RunTimeout:    o.runTimeout,
	}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		if err := orch.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})

	return &harness{
		cfg:       cfg,
		store:     st,
		blobs:     blobs,
		fs:        fsStore,
		orch:      orch,
		source:    source,
		publisher: publisher,
		ffmpeg:    counter,
	}
}

func (h *harness) request(videoID string, langs ...string) pipeline.Request {
	return pipeline.Request{
		VideoID:        videoID,
		ProjectID:      "p1",
		SourceLocation: h.source.String(),
		Languages:      langs,
	}
}

func (h *harness) run(t *testing.T, req pipeline.Request) pipeline.Report {
	t.Helper()

	task, err := h.orch.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return waitTask(t, task)
}

func waitTask(t *testing.T, task *pipeline.Task) pipeline.Report {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	report, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return report
}

func (h *harness) videoStatus(t *testing.T, id string) store.VideoStatus {
	t.Helper()

	video, err := h.store.GetVideo(context.Background(), id)
	if err != nil || video == nil {
		t.Fatalf("GetVideo(%s) = %v, %v", id, video, err)
	}
	return video.Status
}

func (h *harness) transcripts(t *testing.T, videoID string) []*store.Transcript {
	t.Helper()

	list, err := h.store.ListTranscripts(context.Background(), videoID)
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	return list
}

func (h *harness) object(t *testing.T, rawLocation string) string {
	t.Helper()

	loc, err := blob.ParseLocation(rawLocation, h.cfg.Storage.Bucket)
	if err != nil {
		t.Fatalf("ParseLocation(%q): %v", rawLocation, err)
	}
	data, err := h.blobs.Get(context.Background(), loc.Bucket, loc.Key)
	if err != nil {
		t.Fatalf("Get(%s): %v", rawLocation, err)
	}
	return string(data)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event pipeline.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []pipeline.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pipeline.Event(nil), p.events...)
}

var englishSegments = []subtitles.Segment{
	{Start: 0, End: 1.5, Text: "Hello there"},
	{Start: 1.5, End: 3, Text: "General Kenobi"},
}

// fixedTranscriber returns segments in detected and counts calls.
func fixedTranscriber(detected string, segments []subtitles.Segment, calls *testsupport.Counter) services.Transcriber {
	return services.TranscriberFunc(func(ctx context.Context, audioPath, workDir string) (services.Transcription, error) {
		calls.Inc()
		if err := ctx.Err(); err != nil {
			return services.Transcription{}, err
		}
		return services.Transcription{Language: detected, Segments: append([]subtitles.Segment(nil), segments...)}, nil
	})
}

// prefixTranslator tags text with the target language and fails for lines in failOn.
func prefixTranslator(calls *testsupport.Counter, failOn ...string) services.Translator {
	return services.TranslatorFunc(func(ctx context.Context, text, source, target string) (string, error) {
		calls.Inc()
		for _, bad := range failOn {
			if text == bad {
				return "", errors.New("translation service unavailable")
			}
		}
		return "[" + target + "] " + text, nil
	})
}

func languagesOf(results []pipeline.LanguageResult) []string {
	out := make([]string, 0, len(results))
	for _, res := range results {
		out = append(out, res.Language)
	}
	return out
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil)
	testsupport.SeedProject(t, h.store, "p2", "u2")
	testsupport.SeedVideo(t, h.store, "v-other", "p2")

	tests := []struct {
		name   string
		req    pipeline.Request
		marker error
	}{
		{"missing video id", pipeline.Request{ProjectID: "p1", SourceLocation: h.source.String()}, services.ErrValidation},
		{"missing source", pipeline.Request{VideoID: "v1", ProjectID: "p1"}, services.ErrValidation},
		{"http source", pipeline.Request{VideoID: "v1", ProjectID: "p1", SourceLocation: "https://example.com/v.mp4"}, services.ErrValidation},
		{"bad language", pipeline.Request{VideoID: "v1", ProjectID: "p1", SourceLocation: h.source.String(), Languages: []string{"!!"}}, services.ErrValidation},
		{"unknown project", pipeline.Request{VideoID: "v1", ProjectID: "nope", SourceLocation: h.source.String()}, services.ErrNotFound},
		{"unknown video", pipeline.Request{VideoID: "nope", ProjectID: "p1", SourceLocation: h.source.String()}, services.ErrNotFound},
		{"foreign video", pipeline.Request{VideoID: "v-other", ProjectID: "p1", SourceLocation: h.source.String()}, services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := h.orch.Submit(context.Background(), tt.req)
			if task != nil || !errors.Is(err, tt.marker) {
				t.Fatalf("Submit = %v, %v; want marker %v", task, err, tt.marker)
			}
		})
	}

	if got := h.videoStatus(t, "v1"); got != store.VideoPending {
		t.Fatalf("rejections must not change state, v1 is %s", got)
	}
	if calls.Value() != 0 {
		t.Fatalf("rejected requests must not transcribe, got %d calls", calls.Value())
	}
}

func TestSubmitStoreFailureIsRetryable(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil)
	if err := h.store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	task, err := h.orch.Submit(context.Background(), h.request("v1", "es"))
	if task != nil || !errors.Is(err, services.ErrTransient) {
		t.Fatalf("Submit = %v, %v; want transient error", task, err)
	}
	if !services.IsRetryable(err) || services.HTTPStatus(err) != http.StatusServiceUnavailable {
		t.Fatalf("store failure should map to a retryable 503, got %v", err)
	}
	if calls.Value() != 0 {
		t.Fatalf("transcriber called %d times", calls.Value())
	}
}

func TestRunProcessesBaselineFirstWithoutDuplicates(t *testing.T) {
	calls := &testsupport.Counter{}
	translations := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), prefixTranslator(translations))

	report := h.run(t, h.request("v1", "es", "en", "ES"))

	if got := languagesOf(report.Languages); strings.Join(got, ",") != "en,es" {
		t.Fatalf("execution order = %v, want [en es]", got)
	}
	if report.Status != store.VideoDone || report.Err != nil {
		t.Fatalf("report = %s, %v; want DONE without error", report.Status, report.Err)
	}
	if got := h.videoStatus(t, "v1"); got != store.VideoDone {
		t.Fatalf("video status = %s, want DONE", got)
	}
	if got := len(h.transcripts(t, "v1")); got != 2 {
		t.Fatalf("transcripts = %d, want 2", got)
	}
	if calls.Value() != 2 || h.ffmpeg.Value() != 2 {
		t.Fatalf("expected one extraction and transcription per language, got ffmpeg=%d transcribe=%d", h.ffmpeg.Value(), calls.Value())
	}
	if translations.Value() != len(englishSegments) {
		t.Fatalf("expected only es segments translated, got %d calls", translations.Value())
	}
	if _, ok := h.orch.Task("v1"); ok {
		t.Fatal("finished task must leave the registry")
	}
}

func TestRunCollapsesBaselineAliases(t *testing.T) {
	calls := &testsupport.Counter{}
	translations := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), prefixTranslator(translations))

	report := h.run(t, h.request("v1", "en-US", "english", "eng"))

	if got := languagesOf(report.Languages); strings.Join(got, ",") != "en" {
		t.Fatalf("execution order = %v, want [en]", got)
	}
	if calls.Value() != 1 || translations.Value() != 0 {
		t.Fatalf("transcribe=%d translate=%d; want one baseline run without translation", calls.Value(), translations.Value())
	}
	list := h.transcripts(t, "v1")
	if len(list) != 1 || list[0].Language != "en" {
		t.Fatalf("transcripts = %+v, want a single en transcript", list)
	}
	if !strings.HasSuffix(list[0].SRTURL, "/v1_en.srt") {
		t.Fatalf("srt location = %q", list[0].SRTURL)
	}
}

func TestRunUploadsArtifactsWithMetadata(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), prefixTranslator(&testsupport.Counter{}))

	report := h.run(t, h.request("v1"))
	if report.Status != store.VideoDone {
		t.Fatalf("status = %s (%v), want DONE", report.Status, report.Err)
	}

	list := h.transcripts(t, "v1")
	if len(list) != 1 {
		t.Fatalf("transcripts = %d, want 1", len(list))
	}
	en := list[0]
	bucket := h.cfg.Storage.Bucket
	srtKey := "u1/p1/transcripts/v1_en.srt"
	if en.SRTURL != "file://"+bucket+"/"+srtKey {
		t.Fatalf("srt url = %q", en.SRTURL)
	}
	if en.TXTURL != "file://"+bucket+"/u1/p1/transcripts/v1_en.txt" {
		t.Fatalf("txt url = %q", en.TXTURL)
	}

	srt := h.object(t, en.SRTURL)
	want := "1\n00:00:00,000 --> 00:00:01,500\nHello there\n\n2\n00:00:01,500 --> 00:00:03,000\nGeneral Kenobi\n\n"
	if srt != want {
		t.Fatalf("srt document:\n%q\nwant:\n%q", srt, want)
	}
	if txt := h.object(t, en.TXTURL); txt != "Hello there General Kenobi" {
		t.Fatalf("txt = %q", txt)
	}

	attrs, err := h.fs.Attributes(bucket, srtKey)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.ContentType != blob.ContentTypeSRT {
		t.Fatalf("content type = %q", attrs.ContentType)
	}
	if attrs.Metadata["video_id"] != "v1" || attrs.Metadata["project_id"] != "p1" || attrs.Metadata["language"] != "en" {
		t.Fatalf("metadata = %v", attrs.Metadata)
	}

	events := h.publisher.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].VideoID != "v1" || events[0].Status != string(store.VideoDone) || len(events[0].Transcripts) != 1 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if !events[0].ProjectCompleted || !report.ProjectCompleted {
		t.Fatal("single-video project should complete")
	}
}

func TestTranslationFallsBackPerSegment(t *testing.T) {
	calls := &testsupport.Counter{}
	translations := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), prefixTranslator(translations, "General Kenobi"))

	report := h.run(t, h.request("v1", "es"))
	if report.Status != store.VideoDone {
		t.Fatalf("status = %s (%v), want DONE", report.Status, report.Err)
	}
	var es *store.Transcript
	for _, res := range report.Succeeded() {
		if res.Language == "es" {
			es = res.Transcript
		}
	}
	if es == nil {
		t.Fatal("expected es transcript")
	}
	if txt := h.object(t, es.TXTURL); txt != "[es] Hello there General Kenobi" {
		t.Fatalf("es text = %q", txt)
	}
	cues := subtitles.Parse(h.object(t, es.SRTURL))
	if len(cues) != 2 {
		t.Fatalf("es cues = %d, want 2", len(cues))
	}
}

func TestTranslationSkippedForDetectedLanguage(t *testing.T) {
	calls := &testsupport.Counter{}
	translations := &testsupport.Counter{}
	spanish := []subtitles.Segment{{Start: 0, End: 2, Text: "Hola amigos"}}
	h := newHarness(t, fixedTranscriber("spanish", spanish, calls), prefixTranslator(translations))

	report := h.run(t, h.request("v1", "es", "fr"))
	if got := len(report.Succeeded()); got != 3 {
		t.Fatalf("succeeded = %d, want 3 (%v)", got, report.Failed())
	}
	if translations.Value() != 1 {
		t.Fatalf("only fr should be translated, got %d calls", translations.Value())
	}
	for _, res := range report.Succeeded() {
		txt := h.object(t, res.Transcript.TXTURL)
		switch res.Language {
		case "en", "es":
			if txt != "Hola amigos" {
				t.Fatalf("%s text = %q, want original", res.Language, txt)
			}
		case "fr":
			if txt != "[fr] Hola amigos" {
				t.Fatalf("fr text = %q", txt)
			}
		}
	}
}

func TestNonBaselineFailureIsSkipped(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), prefixTranslator(&testsupport.Counter{}), failExtractionFor("fr"))

	report := h.run(t, h.request("v1", "fr", "es"))

	if report.Status != store.VideoDone || report.Err != nil {
		t.Fatalf("report = %s, %v; want DONE", report.Status, report.Err)
	}
	if got := languagesOf(report.Succeeded()); strings.Join(got, ",") != "en,es" {
		t.Fatalf("succeeded = %v", got)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Language != "fr" || pipeline.StageOf(failed[0].Err) != pipeline.StageExtract {
		t.Fatalf("failed = %+v", failed)
	}
	if got := len(h.transcripts(t, "v1")); got != 2 {
		t.Fatalf("transcripts = %d, want 2", got)
	}
	if len(h.publisher.Events()) != 1 {
		t.Fatal("expected completion event")
	}
}

func TestBaselineExtractionFailureAbortsRun(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil, failExtractionFor("en", "es"))

	report := h.run(t, h.request("v1", "es"))

	if report.Status != store.VideoPending || report.Err == nil {
		t.Fatalf("report = %s, %v; want PENDING with error", report.Status, report.Err)
	}
	if got := languagesOf(report.Languages); strings.Join(got, ",") != "en" {
		t.Fatalf("languages attempted = %v, want only en", got)
	}
	if calls.Value() != 0 {
		t.Fatalf("transcriber called %d times", calls.Value())
	}
	if got := h.videoStatus(t, "v1"); got != store.VideoPending {
		t.Fatalf("video status = %s", got)
	}
	if got := len(h.transcripts(t, "v1")); got != 0 {
		t.Fatalf("transcripts = %d, want 0", got)
	}
	if len(h.publisher.Events()) != 0 {
		t.Fatal("failed run must not publish")
	}
	project, err := h.store.GetProject(context.Background(), "p1")
	if err != nil || project.Status != store.ProjectPending {
		t.Fatalf("project = %+v, %v", project, err)
	}
}

func TestZeroSegmentsAbortsRun(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", nil, calls), nil)

	report := h.run(t, h.request("v1", "es", "fr"))

	if !errors.Is(report.Err, pipeline.ErrNoSegments) {
		t.Fatalf("err = %v, want ErrNoSegments", report.Err)
	}
	if calls.Value() != 1 {
		t.Fatalf("transcriber called %d times, want 1", calls.Value())
	}
	if report.Status != store.VideoPending || h.videoStatus(t, "v1") != store.VideoPending {
		t.Fatalf("expected PENDING, got %s", report.Status)
	}
}

func TestAllLanguagesFailingStillCompletesVideo(t *testing.T) {
	calls := &testsupport.Counter{}
	transcriber := services.TranscriberFunc(func(context.Context, string, string) (services.Transcription, error) {
		calls.Inc()
		return services.Transcription{}, errors.New("model crashed")
	})
	h := newHarness(t, transcriber, nil)

	report := h.run(t, h.request("v1", "es"))

	if report.Err != nil || report.Status != store.VideoDone {
		t.Fatalf("report = %s, %v; want DONE without error", report.Status, report.Err)
	}
	if calls.Value() != 2 {
		t.Fatalf("each language should be attempted, got %d calls", calls.Value())
	}
	if got := len(report.Failed()); got != 2 {
		t.Fatalf("failed = %d, want 2", got)
	}
	for _, res := range report.Failed() {
		if pipeline.StageOf(res.Err) != pipeline.StageTranscribe {
			t.Fatalf("%s failed at %q", res.Language, pipeline.StageOf(res.Err))
		}
	}
	if h.videoStatus(t, "v1") != store.VideoDone {
		t.Fatal("expected DONE")
	}
	if got := len(h.transcripts(t, "v1")); got != 0 {
		t.Fatalf("transcripts = %d, want 0", got)
	}
	if !report.ProjectCompleted {
		t.Fatal("expected project recompute to complete the single-video project")
	}
	project, err := h.store.GetProject(context.Background(), "p1")
	if err != nil || project.Status != store.ProjectCompleted || project.ProcessedVideos != 1 {
		t.Fatalf("project = %+v, %v", project, err)
	}
	events := h.publisher.Events()
	if len(events) != 1 || len(events[0].Transcripts) != 0 {
		t.Fatalf("events = %+v, want one event without transcripts", events)
	}
}

// blockingTranscriber signals started and blocks until ctx ends or release closes.
func blockingTranscriber(started chan<- struct{}, release <-chan struct{}) services.Transcriber {
	var once sync.Once
	return services.TranscriberFunc(func(ctx context.Context, _, _ string) (services.Transcription, error) {
		once.Do(func() { close(started) })
		select {
		case <-ctx.Done():
			return services.Transcription{}, ctx.Err()
		case <-release:
			return services.Transcription{Language: "en", Segments: englishSegments}, nil
		}
	})
}

func TestSubmitMarksProcessingAndRejectsDuplicates(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t, blockingTranscriber(started, release), nil)

	task, err := h.orch.Submit(context.Background(), h.request("v1"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := h.videoStatus(t, "v1"); got != store.VideoProcessing {
		t.Fatalf("video status after submit = %s, want PROCESSING", got)
	}
	<-started

	if _, err := h.orch.Submit(context.Background(), h.request("v1")); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("duplicate submit err = %v, want ErrConflict", err)
	}
	if ids := h.orch.ActiveVideoIDs(); len(ids) != 1 || ids[0] != "v1" {
		t.Fatalf("active = %v", ids)
	}
	if areas := h.orch.ActiveWorkAreas(); len(areas) != 1 {
		t.Fatalf("active work areas = %v", areas)
	}

	close(release)
	report := waitTask(t, task)
	if report.Status != store.VideoDone {
		t.Fatalf("status = %s (%v)", report.Status, report.Err)
	}
	if len(h.orch.ActiveVideoIDs()) != 0 {
		t.Fatal("registry should be empty")
	}
}

func TestCancelResetsVideo(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, blockingTranscriber(started, make(chan struct{})), nil)

	task, err := h.orch.Submit(context.Background(), h.request("v1", "es"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if !h.orch.Cancel("v1") {
		t.Fatal("Cancel should find the active task")
	}
	report := waitTask(t, task)

	if !errors.Is(report.Err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", report.Err)
	}
	if report.Status != store.VideoPending || h.videoStatus(t, "v1") != store.VideoPending {
		t.Fatalf("expected PENDING, got %s", report.Status)
	}
	if len(h.transcripts(t, "v1")) != 0 {
		t.Fatal("cancelled run must not leave transcripts")
	}
	if h.orch.Cancel("v1") {
		t.Fatal("Cancel of a finished task should report false")
	}
}

func TestRunTimeoutResetsVideo(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, blockingTranscriber(started, make(chan struct{})), nil, withRunTimeout(50*time.Millisecond))

	report := h.run(t, h.request("v1"))

	if !errors.Is(report.Err, services.ErrTimeout) || !errors.Is(report.Err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want timeout", report.Err)
	}
	if h.videoStatus(t, "v1") != store.VideoPending {
		t.Fatal("expected PENDING after timeout")
	}
}

func TestStagingFailureResetsVideo(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil)

	req := h.request("v1")
	req.SourceLocation = "uploads/missing.mp4"
	report := h.run(t, req)

	if !errors.Is(report.Err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", report.Err)
	}
	if len(report.Languages) != 0 || calls.Value() != 0 {
		t.Fatal("no language should run when staging fails")
	}
	if h.videoStatus(t, "v1") != store.VideoPending {
		t.Fatal("expected PENDING")
	}
}

func TestProjectCompletesWhenLastVideoDone(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil)
	testsupport.SeedVideo(t, h.store, "v2", "p1")

	first := h.run(t, h.request("v1"))
	if first.Status != store.VideoDone || first.ProjectCompleted {
		t.Fatalf("first = %s completed=%v; want DONE and project still pending", first.Status, first.ProjectCompleted)
	}
	project, _ := h.store.GetProject(context.Background(), "p1")
	if project.Status != store.ProjectPending {
		t.Fatalf("project status = %s, want PENDING", project.Status)
	}

	second := h.run(t, h.request("v2"))
	if !second.ProjectCompleted {
		t.Fatal("project should complete with the last video")
	}
	project, _ = h.store.GetProject(context.Background(), "p1")
	if project.Status != store.ProjectCompleted || project.TotalVideos != 2 || project.ProcessedVideos != 2 {
		t.Fatalf("project = %+v", project)
	}
}

func TestShutdownRefusesNewWork(t *testing.T) {
	calls := &testsupport.Counter{}
	h := newHarness(t, fixedTranscriber("en", englishSegments, calls), nil)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := h.orch.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := h.orch.Submit(context.Background(), h.request("v1")); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("submit after shutdown err = %v", err)
	}
	if h.videoStatus(t, "v1") != store.VideoPending {
		t.Fatal("refused submit must not change state")
	}
}
