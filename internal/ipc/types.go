package ipc

import (
	"mediasort/internal/daemon"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/stats"
)

// ServiceName is the RPC receiver name registered by the server.
const ServiceName = "MediaSort"

// StartRequest triggers daemon monitoring startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon monitoring.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse carries the combined daemon and workflow status.
type StatusResponse struct {
	daemon.Status
}

// StatsRequest fetches session placement counters.
type StatsRequest struct{}

// StatsResponse reports per-category placements since the daemon started.
type StatsResponse struct {
	stats.Snapshot
	Total uint64 `json:"total"`
}

// ImportRequest organizes every file under Dir.
type ImportRequest struct {
	Dir string `json:"dir"`
}

// ImportResponse reports the outcome of a mass import.
type ImportResponse struct {
	daemon.ImportResult
}

// ParseRequest classifies a filename without touching the filesystem.
type ParseRequest struct {
	Name string `json:"name"`
}

// ParseResponse is the dry-run classification report.
type ParseResponse struct {
	daemon.ParseReport
}

// HistoryRequest lists recent placements; zero Limit uses the daemon default.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse lists placements newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// LogTailRequest fetches buffered log events after Since.
type LogTailRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
}

// LogTailResponse returns log events and the sequence to resume from.
type LogTailResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
