package store

import (
	"strings"
	"time"
)

// VideoStatus is the lifecycle state of a video.
type VideoStatus string

const (
	VideoPending    VideoStatus = "PENDING"
	VideoProcessing VideoStatus = "PROCESSING"
	VideoDone       VideoStatus = "DONE"
)

// ParseVideoStatus converts a case-insensitive status name.
func ParseVideoStatus(value string) (VideoStatus, bool) {
	switch VideoStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case VideoPending:
		return VideoPending, true
	case VideoProcessing:
		return VideoProcessing, true
	case VideoDone:
		return VideoDone, true
	default:
		return "", false
	}
}

// ProjectStatus is the aggregate state of a project.
type ProjectStatus string

const (
	ProjectPending   ProjectStatus = "PENDING"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Project groups the videos uploaded by one owner.
type Project struct {
	ID              string
	OwnerID         string
	Name            string
	Status          ProjectStatus
	TotalVideos     int
	ProcessedVideos int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Video is one uploaded source file awaiting or undergoing transcription.
type Video struct {
	ID             string
	ProjectID      string
	Title          string
	SourceLocation string
	Status         VideoStatus
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transcript records the artifacts produced for one (video, language) pair.
type Transcript struct {
	ID        string
	VideoID   string
	Language  string
	SRTURL    string
	TXTURL    string
	CreatedAt time.Time
}

// HasText reports whether the plain-text artifact exists.
func (t Transcript) HasText() bool {
	return strings.TrimSpace(t.TXTURL) != ""
}

// StatusCounts summarizes videos by status.
type StatusCounts struct {
	Pending    int
	Processing int
	Done       int
}

// Total returns the number of videos counted.
func (c StatusCounts) Total() int {
	return c.Pending + c.Processing + c.Done
}

// DatabaseHealth describes diagnostic results for the database file.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	MissingTables    []string
	IntegrityCheck   bool
	Error            string
}
