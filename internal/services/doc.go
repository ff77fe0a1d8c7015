// Package services defines shared utilities consumed by the ingestion pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp worker indexes, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is instead of string matching.
//
// The subpackages hold the metadata lookup clients (TVMaze, MusicBrainz, TMDB,
// AcoustID) and the shared resty client they are built on.
package services
