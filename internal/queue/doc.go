// Package queue implements the ingestion queue: a bounded, non-blocking FIFO
// of file paths shared by the watcher, the sweeper, and the worker pool.
//
// Admission is deduplicated per path for a configurable window so that the
// watcher and the periodic sweep can report the same file without it being
// processed twice. The admission record is an LRU capped at MaxRecords; once
// an insert pushes it over the cap, the oldest entries are evicted until it is
// back at 90% of the cap.
package queue
