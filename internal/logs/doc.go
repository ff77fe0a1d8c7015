// Package logs reads the daemon's on-disk log file. The CLI uses it to show
// recent lines when the daemon is not running and its in-memory event buffer
// is gone with it.
package logs
