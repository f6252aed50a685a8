package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageGCS, StorageFilesystem:
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (expected %s or %s)", c.Storage.Backend, StorageGCS, StorageFilesystem)
	}
	if strings.ContainsAny(c.Storage.Bucket, "/ ") {
		return fmt.Errorf("storage.bucket: invalid bucket name %q", c.Storage.Bucket)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Engine {
	case EngineWhisperX:
		switch c.Transcription.WhisperXVADMethod {
		case "silero", "pyannote":
		default:
			return fmt.Errorf("transcription.whisperx_vad_method: unsupported value %q", c.Transcription.WhisperXVADMethod)
		}
		if c.Transcription.WhisperXVADMethod == "pyannote" && c.Transcription.WhisperXHuggingFace == "" {
			return errors.New("transcription.whisperx_hf_token must be set when whisperx_vad_method is pyannote")
		}
	case EngineOpenAI:
		if c.Translation.APIKey == "" {
			return errors.New("translation.api_key must be set when transcription.engine is openai (set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q (expected %s or %s)", c.Transcription.Engine, EngineWhisperX, EngineOpenAI)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !c.Translation.Enabled {
		return nil
	}
	if c.Translation.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/vidscribe/config.toml"
		}
		return fmt.Errorf("translation.api_key is required when translation is enabled. Set OPENAI_API_KEY or edit %s (create with 'vidscribe config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Translation.BaseURL, "http://") && !strings.HasPrefix(c.Translation.BaseURL, "https://") {
		return fmt.Errorf("translation.base_url must be an http(s) URL, got %q", c.Translation.BaseURL)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RunTimeout <= 0 {
		return errors.New("workflow.run_timeout must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	if c.Workflow.StaleWorkDirHours < 0 {
		return errors.New("workflow.stale_work_dir_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
