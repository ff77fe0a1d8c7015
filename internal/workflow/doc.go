// Package workflow runs the worker pool that drains the ingestion queue.
//
// Each worker pops a pending path, waits for the file to stop changing, and
// hands it to the organizer. Successful moves trigger source folder cleanup.
// Item failures and panics are contained at the loop boundary so one bad file
// never stops a worker. Moves run on a context detached from shutdown; only
// the stability wait observes cancellation.
package workflow
