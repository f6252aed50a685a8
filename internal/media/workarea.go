package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vidscribe/internal/logging"
)

// LanguageFiles are the per-language locations inside a work area.
type LanguageFiles struct {
	Dir       string
	Audio     string
	Subtitles string
	Text      string
}

// WorkArea is the run-scoped directory holding a staged video and the
// per-language files derived from it.
type WorkArea struct {
	Root      string
	VideoPath string
	// AudioStream is the container index of the audio stream to extract, or -1
	// when it was not probed.
	AudioStream int

	logger *slog.Logger

	mu     sync.Mutex
	langs  map[string]string
	closed bool
}

func newWorkArea(root, videoPath string, logger *slog.Logger) *WorkArea {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WorkArea{
		Root:        root,
		VideoPath:   videoPath,
		AudioStream: -1,
		logger:      logger,
		langs:       make(map[string]string),
	}
}

// Language creates the directory for lang and returns its file locations.
func (w *WorkArea) Language(lang string) (LanguageFiles, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || strings.ContainsAny(lang, `/\.`) {
		return LanguageFiles{}, fmt.Errorf("work area: invalid language %q", lang)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return LanguageFiles{}, errors.New("work area: already closed")
	}
	dir := filepath.Join(w.Root, "lang-"+lang)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return LanguageFiles{}, fmt.Errorf("work area: create language dir: %w", err)
	}
	w.langs[lang] = dir
	return LanguageFiles{
		Dir:       dir,
		Audio:     filepath.Join(dir, "audio.wav"),
		Subtitles: filepath.Join(dir, lang+".srt"),
		Text:      filepath.Join(dir, lang+".txt"),
	}, nil
}

// Release removes the language directory and everything in it. Releasing an
// unknown or already released language is a no-op.
func (w *WorkArea) Release(lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	w.mu.Lock()
	dir, ok := w.langs[lang]
	delete(w.langs, lang)
	w.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("work area: release %s: %w", lang, err)
	}
	return nil
}

// ReleaseVideo removes the staged video file once no language needs it.
func (w *WorkArea) ReleaseVideo() error {
	if w.VideoPath == "" {
		return nil
	}
	if err := os.Remove(w.VideoPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("work area: release video: %w", err)
	}
	return nil
}

// Close removes the whole work area. It is safe to call more than once.
func (w *WorkArea) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.langs = map[string]string{}
	w.mu.Unlock()

	if err := os.RemoveAll(w.Root); err != nil {
		w.logger.Warn("failed to remove work area",
			logging.String("path", w.Root),
			logging.Error(err),
			logging.String(logging.FieldEventType, "work_area_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "check work_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed until stale cleanup"),
		)
		return fmt.Errorf("work area: remove %s: %w", w.Root, err)
	}
	return nil
}
