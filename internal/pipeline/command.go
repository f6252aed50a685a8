package pipeline

import "strings"

// Command is the wire form of a processing request, shared by the HTTP
// endpoint and the command queue. VideoS3URL is the field name used by
// existing upload clients; SourceLocation takes precedence when both are set.
type Command struct {
	VideoID        string   `json:"video_id"`
	ProjectID      string   `json:"project_id"`
	VideoS3URL     string   `json:"video_s3_url,omitempty"`
	SourceLocation string   `json:"source_location,omitempty"`
	Languages      []string `json:"languages"`
}

// Request converts the command into an orchestrator request.
func (c Command) Request() Request {
	source := strings.TrimSpace(c.SourceLocation)
	if source == "" {
		source = strings.TrimSpace(c.VideoS3URL)
	}
	return Request{
		VideoID:        c.VideoID,
		ProjectID:      c.ProjectID,
		SourceLocation: source,
		Languages:      c.Languages,
	}
}
