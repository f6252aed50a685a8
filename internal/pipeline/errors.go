package pipeline

import (
	"errors"
	"fmt"
)

// Language run stages, in execution order.
const (
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageEncode     = "encode"
	StageUpload     = "upload"
	StagePersist    = "persist"
)

var (
	// ErrNoSegments reports a transcription that produced nothing to encode.
	ErrNoSegments = errors.New("transcription produced no segments")
	// ErrEmptyTranscript reports a subtitle document whose decoded text is blank.
	ErrEmptyTranscript = errors.New("decoded transcript is empty")
)

// LanguageError is the failure of one language run.
type LanguageError struct {
	Language string
	Stage    string
	Err      error
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("language %s: %s: %v", e.Language, e.Stage, e.Err)
}

func (e *LanguageError) Unwrap() error {
	return e.Err
}

func languageErr(lang, stage string, err error) *LanguageError {
	return &LanguageError{Language: lang, Stage: stage, Err: err}
}

// StageOf returns the stage recorded on a LanguageError, or "" for other errors.
func StageOf(err error) string {
	var langErr *LanguageError
	if errors.As(err, &langErr) {
		return langErr.Stage
	}
	return ""
}
