package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// StatusProcessingStarted is reported when a video is accepted.
const StatusProcessingStarted = "processing_started"

// ProcessVideoResponse acknowledges an accepted process-video request.
type ProcessVideoResponse struct {
	VideoID     string       `json:"video_id"`
	Transcripts []Transcript `json:"transcripts"`
	Status      string       `json:"status"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Project describes a project and its videos.
type Project struct {
	ID              string         `json:"id"`
	OwnerID         string         `json:"owner_id"`
	Name            string         `json:"name,omitempty"`
	Status          string         `json:"status"`
	TotalVideos     int            `json:"total_videos"`
	ProcessedVideos int            `json:"processed_videos"`
	VideoCounts     map[string]int `json:"video_counts"`
	Videos          []Video        `json:"videos,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty"`
	UpdatedAt       string         `json:"updated_at,omitempty"`
}

// Video describes a video and the transcripts produced for it.
type Video struct {
	ID             string       `json:"id"`
	ProjectID      string       `json:"project_id"`
	Title          string       `json:"title,omitempty"`
	SourceLocation string       `json:"source_location,omitempty"`
	Status         string       `json:"status"`
	Active         bool         `json:"active"`
	LastHeartbeat  string       `json:"last_heartbeat,omitempty"`
	Transcripts    []Transcript `json:"transcripts,omitempty"`
	CreatedAt      string       `json:"created_at,omitempty"`
	UpdatedAt      string       `json:"updated_at,omitempty"`
}

// Transcript lists the artifact locations of one language.
type Transcript struct {
	Language  string `json:"language"`
	SRTURL    string `json:"srt_url"`
	TXTURL    string `json:"txt_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CancelResponse acknowledges a cancellation request.
type CancelResponse struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	DatabasePath string             `json:"database_path"`
	LockFilePath string             `json:"lock_file_path"`
	BrokerActive bool               `json:"broker_active"`
	ActiveVideos []string           `json:"active_videos"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
