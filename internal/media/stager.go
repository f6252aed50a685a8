package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"vidscribe/internal/blob"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

// WorkAreaPrefix starts the directory name of every work area.
const WorkAreaPrefix = "video-"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Stager downloads source videos into fresh work areas.
type Stager struct {
	blobs   blob.Store
	workDir string
	probe   Prober
	logger  *slog.Logger
}

// NewStager creates a stager rooted at workDir. A nil probe skips container
// inspection.
func NewStager(blobs blob.Store, workDir string, probe Prober, logger *slog.Logger) *Stager {
	return &Stager{
		blobs:   blobs,
		workDir: workDir,
		probe:   probe,
		logger:  logging.NewComponentLogger(logger, "stager"),
	}
}

// Stage downloads source into a new work area. On error nothing is left on disk.
func (s *Stager) Stage(ctx context.Context, videoID string, source blob.Location) (*WorkArea, error) {
	logger := logging.WithContext(ctx, s.logger)
	if s.blobs == nil {
		return nil, services.Wrap(services.ErrConfiguration, "stage", "download", "blob store unavailable", nil)
	}
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "stage", "work dir", "cannot create work dir", err)
	}
	name := unsafeNameChars.ReplaceAllString(videoID, "_")
	root, err := os.MkdirTemp(s.workDir, WorkAreaPrefix+name+"-")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "stage", "work dir", "cannot create work area", err)
	}
	area := newWorkArea(root, filepath.Join(root, "source"+path.Ext(source.Key)), s.logger)

	if err := s.blobs.Download(ctx, source.Bucket, source.Key, area.VideoPath); err != nil {
		_ = area.Close()
		marker := services.ErrTransient
		if errors.Is(err, blob.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "stage", "download", fmt.Sprintf("download %s", source), err)
	}

	if s.probe != nil {
		result, err := s.probe(ctx, area.VideoPath)
		if err != nil {
			_ = area.Close()
			return nil, services.Wrap(services.ErrExternalTool, "stage", "probe", "ffprobe failed", err)
		}
		area.AudioStream = result.PrimaryAudioIndex()
		if area.AudioStream < 0 {
			_ = area.Close()
			return nil, services.Wrap(services.ErrValidation, "stage", "probe",
				fmt.Sprintf("%s has no audio stream", source), nil)
		}
		logger.Debug("source probed",
			logging.Int("audio_streams", len(result.AudioStreams())),
			logging.Int("audio_stream", area.AudioStream),
			logging.Any("duration_seconds", result.DurationSeconds()),
		)
	}

	logger.Info("source staged",
		logging.String("source", source.String()),
		logging.String("work_area", root),
	)
	return area, nil
}

// isWorkAreaName reports whether name looks like a directory created by Stage.
func isWorkAreaName(name string) bool {
	return strings.HasPrefix(name, WorkAreaPrefix)
}
