package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vidscribe/internal/blob"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
	"vidscribe/internal/store"
	"vidscribe/internal/subtitles"
)

// BackfillStore lists and updates transcripts that lack a plain-text artifact.
type BackfillStore interface {
	TranscriptsMissingText(ctx context.Context, limit int) ([]*store.Transcript, error)
	SetTranscriptText(ctx context.Context, id, txtURL string) error
}

// BackfillFailure records one transcript the backfill could not repair.
type BackfillFailure struct {
	TranscriptID string
	VideoID      string
	Language     string
	Err          error
}

// BackfillReport summarizes a backfill pass.
type BackfillReport struct {
	Scanned  int
	Repaired int
	Failures []BackfillFailure
}

// Backfiller derives missing plain-text artifacts from stored SRT documents.
type Backfiller struct {
	store  BackfillStore
	blobs  blob.Store
	bucket string
	logger *slog.Logger
}

// NewBackfiller constructs a backfiller. bucket resolves SRT locations stored
// as bare keys.
func NewBackfiller(st BackfillStore, blobs blob.Store, bucket string, logger *slog.Logger) *Backfiller {
	return &Backfiller{
		store:  st,
		blobs:  blobs,
		bucket: bucket,
		logger: logging.NewComponentLogger(logger, "backfill"),
	}
}

// Backfill repairs up to limit transcripts. Per-transcript failures are
// reported and leave existing artifacts untouched; only listing errors and
// cancellation abort the pass.
func (b *Backfiller) Backfill(ctx context.Context, limit int) (BackfillReport, error) {
	var report BackfillReport
	pending, err := b.store.TranscriptsMissingText(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("backfill: list transcripts: %w", err)
	}
	report.Scanned = len(pending)

	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		txtURL, err := b.repair(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failures = append(report.Failures, BackfillFailure{
				TranscriptID: t.ID,
				VideoID:      t.VideoID,
				Language:     t.Language,
				Err:          err,
			})
			logging.WarnWithContext(b.logger, "transcript text backfill failed", "backfill_failed",
				logging.String("transcript_id", t.ID),
				logging.String(logging.FieldVideoID, t.VideoID),
				logging.String(logging.FieldLanguage, t.Language),
				logging.Error(err),
				logging.String(logging.FieldImpact, "transcript stays without plain text"),
			)
			continue
		}
		report.Repaired++
		b.logger.Info("transcript text backfilled",
			logging.String("transcript_id", t.ID),
			logging.String(logging.FieldVideoID, t.VideoID),
			logging.String(logging.FieldLanguage, t.Language),
			logging.String("txt_url", txtURL),
		)
	}
	return report, nil
}

func (b *Backfiller) repair(ctx context.Context, t *store.Transcript) (string, error) {
	srt, err := blob.ParseLocation(t.SRTURL, b.bucket)
	if err != nil {
		return "", err
	}
	document, err := b.blobs.Get(ctx, srt.Bucket, srt.Key)
	if err != nil {
		return "", fmt.Errorf("download srt: %w", err)
	}
	text := strings.TrimSpace(subtitles.Decode(string(document)))
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "backfill", "decode", "srt has no text", ErrEmptyTranscript)
	}

	txtKey := blob.SiblingKey(srt.Key, "txt")
	metadata := map[string]string{
		"video_id": t.VideoID,
		"language": t.Language,
	}
	if err := b.blobs.Put(ctx, srt.Bucket, txtKey, []byte(text), blob.ContentTypeText, metadata); err != nil {
		return "", fmt.Errorf("upload text: %w", err)
	}
	txtURL := blob.Location{Scheme: srt.Scheme, Bucket: srt.Bucket, Key: txtKey}.String()
	if err := b.store.SetTranscriptText(ctx, t.ID, txtURL); err != nil {
		return "", fmt.Errorf("record text location: %w", err)
	}
	return txtURL, nil
}
