package whisperx

// Config selects the model and device for transcription runs.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" or "pyannote"; pyannote requires HFToken.
	VADMethod string
	HFToken   string
}

// UVXCommand runs whisperx from an ephemeral environment.
const UVXCommand = "uvx"

const (
	DefaultModel = "large-v3"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"

	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"

	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Decoding settings tuned for sentence-level subtitle cues.
const (
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "10"
	BestOf            = "10"
	Temperature       = "0.0"
	Patience          = "1.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
)
