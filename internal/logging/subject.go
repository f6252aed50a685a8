package logging

import "strings"

// FormatSubject builds the video/language/stage subject string used in console output.
func FormatSubject(videoID, language, stage string) string {
	videoID = strings.TrimSpace(videoID)
	language = strings.TrimSpace(language)
	stage = strings.TrimSpace(stage)

	parts := make([]string, 0, 2)
	if videoID != "" {
		parts = append(parts, "video "+videoID)
	}
	switch {
	case language != "" && stage != "":
		parts = append(parts, language+" ("+stage+")")
	case language != "":
		parts = append(parts, language)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
