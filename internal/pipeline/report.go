package pipeline

import (
	"time"

	"vidscribe/internal/store"
)

// LanguageResult is the outcome of one language run: a transcript or an error.
type LanguageResult struct {
	Language   string
	Transcript *store.Transcript
	Err        error
}

// OK reports whether the language produced a transcript.
func (r LanguageResult) OK() bool {
	return r.Err == nil && r.Transcript != nil
}

// Report summarizes a finished video run.
type Report struct {
	VideoID   string
	ProjectID string
	// Status is the video status the run ended with.
	Status    store.VideoStatus
	Languages []LanguageResult
	// ProjectCompleted is true when the aggregator marked the project COMPLETED.
	ProjectCompleted bool
	// Err is the run-level failure, nil when the video reached DONE.
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns the languages that produced a transcript.
func (r Report) Succeeded() []LanguageResult {
	var out []LanguageResult
	for _, res := range r.Languages {
		if res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the languages that did not produce a transcript.
func (r Report) Failed() []LanguageResult {
	var out []LanguageResult
	for _, res := range r.Languages {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Duration is the wall-clock time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
