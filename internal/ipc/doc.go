// Package ipc exposes the daemon over JSON-RPC on a Unix domain socket and
// ships the matching client used by the CLI.
//
// Request and response types live in types.go; add new endpoints there so the
// server and client stay in step.
package ipc
