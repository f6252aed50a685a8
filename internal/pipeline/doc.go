// Package pipeline turns a staged video into per-language subtitle and
// plain-text transcripts and drives the video and project status transitions
// around that work.
//
// The Orchestrator accepts submissions, flips the video to PROCESSING and runs
// each video in its own goroutine behind a Task handle that can be waited on or
// cancelled. A run stages the source once, then hands each language to the
// LanguageRunner strictly in order: baseline first, then the requested
// languages. Per-language outcomes are collected into a Report instead of
// aborting the run, except for the few failures no later language could
// recover from. The Aggregator recomputes project completion after every
// finished video and the Backfiller repairs transcripts that lack a plain-text
// artifact.
package pipeline
