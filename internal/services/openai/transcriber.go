package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"vidscribe/internal/language"
	"vidscribe/internal/services"
	"vidscribe/internal/subtitles"
)

// MaxUploadBytes is the hosted transcription endpoint's file size limit.
const MaxUploadBytes = 25 << 20

// Transcriber sends audio to the hosted Whisper endpoint.
type Transcriber struct {
	client *goopenai.Client
	model  string
}

// NewTranscriber constructs a hosted Whisper transcriber.
func NewTranscriber(cfg Config, opts ...Option) *Transcriber {
	client, _ := newClient(cfg, opts)
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultTranscribeModel
	}
	return &Transcriber{client: client, model: model}
}

// Transcribe uploads audioPath and returns the detected language and segments.
// workDir is unused: the endpoint produces no side files.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, _ string) (services.Transcription, error) {
	var result services.Transcription

	info, err := os.Stat(audioPath)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "transcribe", "openai", "audio file unavailable", err)
	}
	if info.Size() > MaxUploadBytes {
		return result, services.Wrap(services.ErrValidation, "transcribe", "openai",
			fmt.Sprintf("audio is %d bytes, above the %d byte upload limit; use the whisperx engine", info.Size(), MaxUploadBytes), nil)
	}

	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "openai", "transcription request failed", err)
	}

	// The endpoint reports the language as an English word.
	result.Language = language.ToISO2(resp.Language)
	result.Segments = make([]subtitles.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, subtitles.Segment{Start: seg.Start, End: seg.End, Text: text})
	}
	return result, nil
}

var _ services.Transcriber = (*Transcriber)(nil)
