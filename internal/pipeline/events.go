package pipeline

import (
	"context"
	"time"
)

// Event announces that a video finished its language list.
type Event struct {
	VideoID     string            `json:"video_id"`
	ProjectID   string            `json:"project_id"`
	Status      string            `json:"status"`
	Transcripts []EventTranscript `json:"transcripts"`
	// ProjectCompleted mirrors the aggregator result for the owning project.
	ProjectCompleted bool      `json:"project_completed"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventTranscript lists the artifact locations of one language.
type EventTranscript struct {
	Language string `json:"language"`
	SRTURL   string `json:"srt_url"`
	TXTURL   string `json:"txt_url,omitempty"`
}

// Publisher delivers completion events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func eventFromReport(report Report) Event {
	event := Event{
		VideoID:          report.VideoID,
		ProjectID:        report.ProjectID,
		Status:           string(report.Status),
		ProjectCompleted: report.ProjectCompleted,
		OccurredAt:       report.FinishedAt.UTC(),
	}
	for _, res := range report.Succeeded() {
		event.Transcripts = append(event.Transcripts, EventTranscript{
			Language: res.Language,
			SRTURL:   res.Transcript.SRTURL,
			TXTURL:   res.Transcript.TXTURL,
		})
	}
	return event
}
