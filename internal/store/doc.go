// Package store persists projects, videos, and transcripts in SQLite and
// exposes the status transitions the pipeline drives.
//
// Every mutation the pipeline issues is a single statement so concurrent runs
// for videos of the same project never interleave partial updates. The project
// aggregate in particular is recomputed by one UPDATE whose predicate checks
// that all of the project's videos are DONE, which makes repeated or concurrent
// recomputation harmless.
//
// Schema changes bump schemaVersion in schema.go; older databases are rejected
// with ErrSchemaMismatch rather than migrated in place.
package store
