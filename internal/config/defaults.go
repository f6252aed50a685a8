package config

const (
	// StorageGCS stores blobs in Google Cloud Storage.
	StorageGCS = "gcs"
	// StorageFilesystem stores blobs under a local root directory, one subdirectory per bucket.
	StorageFilesystem = "filesystem"

	// EngineWhisperX runs WhisperX locally through uvx.
	EngineWhisperX = "whisperx"
	// EngineOpenAI calls the hosted Whisper transcription endpoint.
	EngineOpenAI = "openai"
)

const (
	defaultWorkDir                   = "~/.local/share/vidscribe/work"
	defaultLogDir                    = "~/.local/share/vidscribe/logs"
	defaultDatabasePath              = "~/.local/share/vidscribe/vidscribe.db"
	defaultAPIBind                   = "127.0.0.1:8000"
	defaultStorageBackend            = StorageGCS
	defaultBucket                    = "vidwise"
	defaultStorageRootDir            = "~/.local/share/vidscribe/blobs"
	defaultUploadRetries             = 3
	defaultTranscriptionEngine       = EngineWhisperX
	defaultWhisperXModel             = "large-v3"
	defaultWhisperXVADMethod         = "silero"
	defaultOpenAITranscriptionModel  = "whisper-1"
	defaultTranslationBaseURL        = "https://api.openai.com/v1"
	defaultTranslationModel          = "gpt-4o-mini"
	defaultTranslationTimeoutSeconds = 60
	defaultTranslationMaxRetries     = 3
	defaultRunTimeout                = 4 * 60 * 60
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
	defaultStaleWorkDirHours         = 24
	defaultCommandQueue              = "video.process.cmd"
	defaultEventQueue                = "video.transcripts.ready"
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:      defaultWorkDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
			APIBind:      defaultAPIBind,
		},
		Storage: Storage{
			Backend:       defaultStorageBackend,
			Bucket:        defaultBucket,
			RootDir:       defaultStorageRootDir,
			UploadRetries: defaultUploadRetries,
		},
		Transcription: Transcription{
			Engine:            defaultTranscriptionEngine,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
			OpenAIModel:       defaultOpenAITranscriptionModel,
		},
		Translation: Translation{
			Enabled:        true,
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeoutSeconds,
			MaxRetries:     defaultTranslationMaxRetries,
		},
		Workflow: Workflow{
			RunTimeout:        defaultRunTimeout,
			HeartbeatInterval: defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:  defaultWorkflowHeartbeatTimeout,
			StaleWorkDirHours: defaultStaleWorkDirHours,
		},
		Broker: Broker{
			CommandQueue: defaultCommandQueue,
			EventQueue:   defaultEventQueue,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
