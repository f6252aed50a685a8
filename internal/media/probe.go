package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProbeResult is the subset of ffprobe output the stager relies on.
type ProbeResult struct {
	Streams []Stream    `json:"streams"`
	Format  ProbeFormat `json:"format"`
}

// Stream describes one stream in the container.
type Stream struct {
	Index       int         `json:"index"`
	CodecName   string      `json:"codec_name"`
	CodecType   string      `json:"codec_type"`
	Channels    int         `json:"channels"`
	Tags        StreamTags  `json:"tags"`
	Disposition Disposition `json:"disposition"`
}

// StreamTags holds stream tags of interest.
type StreamTags struct {
	Language string `json:"language"`
}

// Disposition carries ffprobe's stream flags.
type Disposition struct {
	Default int `json:"default"`
}

// ProbeFormat holds container-level metadata.
type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// Prober inspects a media file.
type Prober func(ctx context.Context, path string) (ProbeResult, error)

// NewProber returns a Prober backed by the ffprobe binary.
func NewProber(binary string, run CommandRunner) Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if run == nil {
		run = ExecRunner
	}
	return func(ctx context.Context, path string) (ProbeResult, error) {
		path = strings.TrimSpace(path)
		if path == "" {
			return ProbeResult{}, errors.New("ffprobe inspect: empty path")
		}
		output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
		if err != nil {
			return ProbeResult{}, fmt.Errorf("ffprobe inspect: %w", err)
		}
		var result ProbeResult
		if err := json.Unmarshal(output, &result); err != nil {
			return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
		}
		return result, nil
	}
}

// AudioStreams returns the audio streams in container order.
func (r ProbeResult) AudioStreams() []Stream {
	var audio []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			audio = append(audio, stream)
		}
	}
	return audio
}

// PrimaryAudioIndex returns the container index of the default audio stream,
// falling back to the first audio stream. It returns -1 when there is no audio.
func (r ProbeResult) PrimaryAudioIndex() int {
	audio := r.AudioStreams()
	if len(audio) == 0 {
		return -1
	}
	for _, stream := range audio {
		if stream.Disposition.Default == 1 {
			return stream.Index
		}
	}
	return audio[0].Index
}

// DurationSeconds returns the container duration, 0 when absent and NaN when unparsable.
func (r ProbeResult) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
