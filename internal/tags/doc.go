// Package tags reads embedded music metadata. MP3 files are read through
// ID3v2 frames and FLAC files through their Vorbis comment block; other
// formats report ErrUnsupported.
package tags
