// Command vidscribe is the operator CLI for the transcription service.
//
// Commands either talk to a running daemon over its HTTP API (process,
// status, cancel) or open the SQLite store and blob storage directly
// (project, video, backfill). "vidscribe serve" runs the daemon in the
// foreground.
package main
