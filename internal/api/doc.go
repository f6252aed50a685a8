// Package api defines wire-format types, converters and read services for the
// HTTP API. It translates store models into transport-friendly DTOs so the
// daemon handlers and the CLI render the same payloads without coupling to
// internal types.
//
// # Key Types
//
// ProcessVideoResponse: acknowledgement returned when a video is accepted.
//
// Project: project aggregate with per-status video counts and the video list.
//
// Video: video state with its produced transcripts.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Design Notes
//
// DTOs use snake_case JSON tags to match the command and event payloads
// exchanged with the upload and indexing services. Statuses are exposed as
// their stored uppercase names. Timestamps use RFC3339 with milliseconds.
package api
