// Package daemon hosts the long-running control surface.
//
// A Daemon owns one monitoring session at a time: Start snapshots the
// configuration, takes the single-instance lock, and wires the ingestion
// queue, worker pool, reconciliation sweeper, and filesystem watcher together.
// It also serves one-shot operations (mass import, parse dry runs, stats,
// history) that front ends reach through IPC or the optional HTTP API.
package daemon
