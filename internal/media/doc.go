// Package media stages source videos into run-scoped work areas and extracts
// the audio that speech-to-text engines consume.
//
// A WorkArea is owned by exactly one pipeline run. It holds the downloaded
// video plus one directory per language, and every location it hands out is
// removed by Release or Close regardless of how the run ends. CleanStale
// removes work areas orphaned by a crashed process.
package media
