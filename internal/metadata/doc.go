// Package metadata enriches locally parsed names with external lookups.
//
// Each service call is reduced to a Lookup value that says whether the
// service answered with a match, answered without one, or could not be
// reached. The resolver folds those values over the parsed defaults, so a
// failing service only ever costs accuracy: Resolve* never return errors.
//
// Ordering per kind:
//   - TV: TVMaze name correction, then TMDB show search and episode title.
//   - Movie: TMDB movie search constrained by year.
//   - Music: embedded tags, then AcoustID fingerprinting, then MusicBrainz.
package metadata
