package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor converts a video's audio into the mono 16 kHz PCM WAV that
// speech-to-text engines expect.
type Extractor struct {
	binary string
	run    CommandRunner
}

// NewExtractor creates an ffmpeg-backed extractor. A nil runner uses os/exec.
func NewExtractor(ffmpegBinary string, run CommandRunner) *Extractor {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if run == nil {
		run = ExecRunner
	}
	return &Extractor{binary: ffmpegBinary, run: run}
}

// ExtractAudio writes the audio of source to dest. streamIndex selects the
// container stream; a negative value lets ffmpeg choose.
func (e *Extractor) ExtractAudio(ctx context.Context, source string, streamIndex int, dest string) error {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return fmt.Errorf("extract audio: source and destination required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure output dir: %w", err)
	}
	if _, err := e.run(ctx, e.binary, BuildExtractArgs(source, streamIndex, dest)...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("extract audio: output missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("extract audio: output %s is empty", dest)
	}
	return nil
}

// BuildExtractArgs returns the ffmpeg arguments for a full-length extraction.
func BuildExtractArgs(source string, streamIndex int, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
	}
	if streamIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", streamIndex))
	}
	return append(args,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	)
}
