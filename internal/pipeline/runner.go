package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"vidscribe/internal/blob"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/services"
	"vidscribe/internal/store"
	"vidscribe/internal/subtitles"
)

// sourceAuto lets the translator detect the source language.
const sourceAuto = "auto"

// AudioExtractor writes the audio of a staged video to dest.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source string, streamIndex int, dest string) error
}

// TranscriptStore persists finished transcripts.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, t store.Transcript) (*store.Transcript, error)
}

// Job describes one (video, language) run.
type Job struct {
	Area      *media.WorkArea
	Language  string
	VideoID   string
	ProjectID string
	OwnerID   string
}

// LanguageRunner produces, uploads and records the transcript of one language.
type LanguageRunner struct {
	extractor   AudioExtractor
	transcriber services.Transcriber
	translator  services.Translator
	blobs       blob.Store
	bucket      string
	transcripts TranscriptStore
	logger      *slog.Logger
}

// RunnerDeps bundles the collaborators of a LanguageRunner.
type RunnerDeps struct {
	Extractor   AudioExtractor
	Transcriber services.Transcriber
	Translator  services.Translator
	Blobs       blob.Store
	Bucket      string
	Transcripts TranscriptStore
}

// NewLanguageRunner constructs a runner. A nil translator disables translation.
func NewLanguageRunner(deps RunnerDeps, logger *slog.Logger) *LanguageRunner {
	translator := deps.Translator
	if translator == nil {
		translator = services.TranslatorFunc(func(context.Context, string, string, string) (string, error) {
			return "", errors.New("translation unavailable")
		})
	}
	return &LanguageRunner{
		extractor:   deps.Extractor,
		transcriber: deps.Transcriber,
		translator:  translator,
		blobs:       deps.Blobs,
		bucket:      deps.Bucket,
		transcripts: deps.Transcripts,
		logger:      logging.NewComponentLogger(logger, "language-runner"),
	}
}

// Run executes extract, transcribe, translate, encode, upload and persist for
// job.Language. Language-scoped files are released on every path. Failures
// are returned as *LanguageError.
func (r *LanguageRunner) Run(ctx context.Context, job Job) (*store.Transcript, error) {
	lang := strings.ToLower(strings.TrimSpace(job.Language))
	ctx = services.WithLanguage(ctx, lang)
	logger := logging.WithContext(ctx, r.logger)

	if job.Area == nil {
		return nil, languageErr(lang, StageExtract, errors.New("work area missing"))
	}
	files, err := job.Area.Language(lang)
	if err != nil {
		return nil, languageErr(lang, StageExtract, err)
	}
	defer func() {
		if err := job.Area.Release(lang); err != nil {
			logging.WarnWithContext(logger, "failed to release language files", "language_cleanup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "files removed with the work area"),
			)
		}
	}()

	if err := r.extractor.ExtractAudio(ctx, job.Area.VideoPath, job.Area.AudioStream, files.Audio); err != nil {
		return nil, languageErr(lang, StageExtract, err)
	}

	transcription, err := r.transcriber.Transcribe(ctx, files.Audio, files.Dir)
	if err != nil {
		return nil, languageErr(lang, StageTranscribe, err)
	}
	if len(transcription.Segments) == 0 {
		return nil, languageErr(lang, StageTranscribe, ErrNoSegments)
	}
	logger.Debug("audio transcribed",
		logging.String("detected_language", transcription.Language),
		logging.Int("segments", len(transcription.Segments)),
	)

	segments, err := r.translateSegments(ctx, logger, transcription, lang)
	if err != nil {
		return nil, languageErr(lang, StageTranslate, err)
	}

	document := subtitles.Encode(segments)
	text := strings.TrimSpace(subtitles.Decode(document))
	if text == "" {
		return nil, languageErr(lang, StageEncode, ErrEmptyTranscript)
	}
	if err := os.WriteFile(files.Subtitles, []byte(document), 0o644); err != nil {
		return nil, languageErr(lang, StageEncode, fmt.Errorf("write subtitles: %w", err))
	}
	if err := os.WriteFile(files.Text, []byte(text), 0o644); err != nil {
		return nil, languageErr(lang, StageEncode, fmt.Errorf("write text: %w", err))
	}

	metadata := map[string]string{
		"video_id":   job.VideoID,
		"project_id": job.ProjectID,
		"language":   lang,
	}
	srtKey := blob.TranscriptKey(job.OwnerID, job.ProjectID, job.VideoID, lang, "srt")
	txtKey := blob.TranscriptKey(job.OwnerID, job.ProjectID, job.VideoID, lang, "txt")
	if err := r.blobs.Put(ctx, r.bucket, srtKey, []byte(document), blob.ContentTypeSRT, metadata); err != nil {
		return nil, languageErr(lang, StageUpload, err)
	}
	if err := r.blobs.Put(ctx, r.bucket, txtKey, []byte(text), blob.ContentTypeText, metadata); err != nil {
		return nil, languageErr(lang, StageUpload, err)
	}

	saved, err := r.transcripts.SaveTranscript(ctx, store.Transcript{
		VideoID:  job.VideoID,
		Language: lang,
		SRTURL:   blob.LocationOf(r.blobs, r.bucket, srtKey).String(),
		TXTURL:   blob.LocationOf(r.blobs, r.bucket, txtKey).String(),
	})
	if err != nil {
		return nil, languageErr(lang, StagePersist, err)
	}

	logger.Info("language transcript stored",
		logging.String(logging.FieldEventType, "language_complete"),
		logging.Int("segments", len(segments)),
		logging.String("srt_url", saved.SRTURL),
	)
	return saved, nil
}

// needsTranslation keeps the rule that the baseline language is never
// translated, even when the spoken language differs from it.
func needsTranslation(target, detected string) bool {
	if language.IsBaseline(target) {
		return false
	}
	return !language.Equal(target, detected)
}

// translateSegments returns a copy of the transcription in target. A segment
// whose translation fails or comes back empty keeps its original text.
func (r *LanguageRunner) translateSegments(ctx context.Context, logger *slog.Logger, transcription services.Transcription, target string) ([]subtitles.Segment, error) {
	segments := make([]subtitles.Segment, len(transcription.Segments))
	copy(segments, transcription.Segments)
	if !needsTranslation(target, transcription.Language) {
		return segments, nil
	}

	fallbacks := 0
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		translated, err := r.translator.Translate(ctx, seg.Text, sourceAuto, target)
		if err != nil || strings.TrimSpace(translated) == "" {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			fallbacks++
			attrs := []logging.Attr{logging.Int("segment", i+1)}
			if err != nil {
				attrs = append(attrs, logging.Error(err))
			}
			logger.Debug("segment translation fell back to source text", logging.Args(attrs...)...)
			continue
		}
		segments[i].Text = strings.TrimSpace(translated)
	}
	if fallbacks > 0 {
		logging.WarnWithContext(logger, "some segments kept their source text", "translation_fallback",
			logging.Int("fallback_segments", fallbacks),
			logging.Int("segments", len(segments)),
			logging.String(logging.FieldImpact, "subtitles partially untranslated"),
		)
	}
	return segments, nil
}
