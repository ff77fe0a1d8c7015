// Package logging assembles structured slog loggers and formatting helpers used
// across mediasort services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with worker indexes, stages, and correlation IDs. A bounded StreamHub
// keeps recent events for the API and CLI, and SinkHandler adapts records to
// the plain (message, severity) callback used by front ends.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape and routing guarantees as the rest of the
// system.
package logging
