// Package sweeper periodically rescans the monitor root and re-admits files
// the watcher missed or that failed earlier with a retryable error.
package sweeper
