// Package daemon coordinates the long-running vidscribe process.
//
// It wires configuration, the SQLite store, the pipeline orchestrator, the
// optional RabbitMQ consumer and the HTTP API into a single lifecycle with
// flock-based locking to prevent multiple instances. On start the daemon
// returns videos left PROCESSING by a previous process to PENDING, then runs a
// watchdog that reclaims videos whose heartbeat went stale and removes work
// areas abandoned by crashed runs.
//
// Keep orchestration logic here: pipeline steps live in their respective
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
