// Package daemonrun hosts the long-running daemon process: per-run log files,
// the PID file, the placement ledger, and the IPC and HTTP control surfaces.
package daemonrun
