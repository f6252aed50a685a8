package pipeline

import (
	"fmt"
	"log/slog"

	"vidscribe/internal/blob"
	"vidscribe/internal/config"
	"vidscribe/internal/media"
	"vidscribe/internal/services"
	"vidscribe/internal/services/openai"
	"vidscribe/internal/services/whisperx"
	"vidscribe/internal/store"
)

// NewTranscriber returns the speech-to-text engine selected by cfg.
func NewTranscriber(cfg *config.Config) (services.Transcriber, error) {
	switch cfg.Transcription.Engine {
	case config.EngineWhisperX:
		return whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.WhisperXModel,
			CUDAEnabled: cfg.Transcription.WhisperXCUDAEnabled,
			VADMethod:   cfg.Transcription.WhisperXVADMethod,
			HFToken:     cfg.Transcription.WhisperXHuggingFace,
		}), nil
	case config.EngineOpenAI:
		return openai.NewTranscriber(openai.Config{
			APIKey:         cfg.Translation.APIKey,
			BaseURL:        cfg.Translation.BaseURL,
			Model:          cfg.Transcription.OpenAIModel,
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
			MaxRetries:     cfg.Translation.MaxRetries,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "config", "transcription",
			fmt.Sprintf("unsupported engine %q", cfg.Transcription.Engine), nil)
	}
}

// NewTranslator returns the translation adapter. A disabled translator fails
// every call, so every segment keeps its original text.
func NewTranslator(cfg *config.Config) services.Translator {
	if !cfg.Translation.Enabled {
		return openai.Disabled{}
	}
	return openai.NewTranslator(openai.Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		MaxRetries:     cfg.Translation.MaxRetries,
	})
}

// New wires an orchestrator from configuration.
func New(cfg *config.Config, st *store.Store, blobs blob.Store, publisher Publisher, logger *slog.Logger) (*Orchestrator, error) {
	transcriber, err := NewTranscriber(cfg)
	if err != nil {
		return nil, err
	}
	stager := media.NewStager(blobs, cfg.Paths.WorkDir, media.NewProber(cfg.FFprobeBinary(), media.ExecRunner), logger)
	runner := NewLanguageRunner(RunnerDeps{
		Extractor:   media.NewExtractor(cfg.FFmpegBinary(), media.ExecRunner),
		Transcriber: transcriber,
		Translator:  NewTranslator(cfg),
		Blobs:       blobs,
		Bucket:      cfg.Storage.Bucket,
		Transcripts: st,
	}, logger)
	return NewOrchestrator(st, stager, runner, publisher, Options{
		DefaultBucket:     cfg.Storage.Bucket,
		RunTimeout:        cfg.RunTimeout(),
		HeartbeatInterval: cfg.HeartbeatInterval(),
		HeartbeatTimeout:  cfg.HeartbeatTimeout(),
	}, logger), nil
}
