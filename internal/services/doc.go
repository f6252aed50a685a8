// Package services defines shared utilities consumed by the pipeline and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, project IDs, languages, stage names,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures for
//     the API (validation, not found, conflict) and for retry decisions.
//
// Subpackages hold the speech-to-text and translation adapters.
package services
