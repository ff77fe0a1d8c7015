// Package organizer classifies a single file and moves it into its category
// root.
//
// Classification is extension driven: audio extensions are music, video
// extensions are TV when the name carries an episode hint and movies
// otherwise, and everything else is unclassified. The parsed name is then
// enriched through the metadata resolver. Organize plans the destination,
// performs the move, bumps the placement counters, and appends the outcome to
// the history ledger.
package organizer
