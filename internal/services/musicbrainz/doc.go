// Package musicbrainz wraps the MusicBrainz recording search used as the last
// resort for untagged music.
package musicbrainz
