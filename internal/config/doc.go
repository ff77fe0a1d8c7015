// Package config loads, normalizes, and validates mediasort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and ACOUSTID_API_KEY. The Config type centralizes the monitored
// root, the category roots, lookup credentials, and pipeline tuning so the
// daemon and CLI discover everything in one pass.
//
// A running pipeline never reads Config directly from disk; the controller
// takes a Snapshot at start so edits apply on the next start.
package config
