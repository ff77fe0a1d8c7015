// Package stats counts placements per category and exports them, together
// with ingestion queue gauges, as Prometheus metrics.
//
// Counters are injected into the worker pool and mass import; only a
// successful move increments them.
package stats
