package services

import (
	"context"

	"vidscribe/internal/subtitles"
)

// Transcription is the result of a speech-to-text run.
type Transcription struct {
	// Language is the ISO 639-1 code the engine detected. Empty when the
	// engine did not report one.
	Language string
	Segments []subtitles.Segment
}

// Transcriber converts an audio file into timed segments in the spoken
// language. workDir is scratch space owned by the caller.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (Transcription, error)
}

// Translator translates a single line of text between two ISO 639-1 languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, audioPath, workDir string) (Transcription, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, audioPath, workDir string) (Transcription, error) {
	return f(ctx, audioPath, workDir)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, source, target string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f(ctx, text, source, target)
}
