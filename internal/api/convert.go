package api

import (
	"time"

	"vidscribe/internal/deps"
	"vidscribe/internal/store"
)

// NewProcessVideoResponse builds the acknowledgement for an accepted video.
// Transcripts are produced asynchronously so the list is always empty.
func NewProcessVideoResponse(videoID string) ProcessVideoResponse {
	return ProcessVideoResponse{
		VideoID:     videoID,
		Transcripts: []Transcript{},
		Status:      StatusProcessingStarted,
	}
}

// FromProject converts a project record and its status counts.
func FromProject(project *store.Project, counts store.StatusCounts) Project {
	if project == nil {
		return Project{}
	}
	return Project{
		ID:              project.ID,
		OwnerID:         project.OwnerID,
		Name:            project.Name,
		Status:          string(project.Status),
		TotalVideos:     project.TotalVideos,
		ProcessedVideos: project.ProcessedVideos,
		VideoCounts:     FromStatusCounts(counts),
		CreatedAt:       FormatTime(project.CreatedAt),
		UpdatedAt:       FormatTime(project.UpdatedAt),
	}
}

// FromVideo converts a video record and its transcripts.
func FromVideo(video *store.Video, transcripts []*store.Transcript) Video {
	if video == nil {
		return Video{}
	}
	dto := Video{
		ID:             video.ID,
		ProjectID:      video.ProjectID,
		Title:          video.Title,
		SourceLocation: video.SourceLocation,
		Status:         string(video.Status),
		Transcripts:    FromTranscripts(transcripts),
		CreatedAt:      FormatTime(video.CreatedAt),
		UpdatedAt:      FormatTime(video.UpdatedAt),
	}
	if video.LastHeartbeat != nil {
		dto.LastHeartbeat = FormatTime(*video.LastHeartbeat)
	}
	return dto
}

// FromVideos converts a list of video records without transcripts.
func FromVideos(videos []*store.Video) []Video {
	out := make([]Video, 0, len(videos))
	for _, v := range videos {
		if v == nil {
			continue
		}
		out = append(out, FromVideo(v, nil))
	}
	return out
}

// FromTranscripts converts transcript records, skipping nil entries.
func FromTranscripts(transcripts []*store.Transcript) []Transcript {
	if len(transcripts) == 0 {
		return nil
	}
	out := make([]Transcript, 0, len(transcripts))
	for _, t := range transcripts {
		if t == nil {
			continue
		}
		out = append(out, Transcript{
			Language:  t.Language,
			SRTURL:    t.SRTURL,
			TXTURL:    t.TXTURL,
			CreatedAt: FormatTime(t.CreatedAt),
		})
	}
	return out
}

// FromStatusCounts renders counts keyed by video status name. Every status is
// present so consumers need no defaulting.
func FromStatusCounts(counts store.StatusCounts) map[string]int {
	return map[string]int{
		string(store.VideoPending):    counts.Pending,
		string(store.VideoProcessing): counts.Processing,
		string(store.VideoDone):       counts.Done,
	}
}

// FromDependencyStatuses converts binary availability reports.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Detail:      s.Detail,
		})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
