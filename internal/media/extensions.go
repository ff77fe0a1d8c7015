package media

import (
	"path/filepath"
	"strings"
)

var (
	musicExtensions = set(".mp3", ".flac", ".wav", ".aac", ".ogg", ".m4a")
	videoExtensions = set(".mkv", ".mp4", ".avi", ".mov", ".wmv", ".m4v")
	// Ignored files are never classified or moved.
	ignoredExtensions = set(".txt", ".nfo", ".jpg", ".png", ".exe", ".url", ".db", ".part", ".tmp", ".crdownload")
	// Junk files are deleted from a source folder after its media moved out.
	junkExtensions = set(".txt", ".nfo", ".jpg", ".png", ".url", ".exe", ".srt")
	tempSuffixes   = []string{".tmp", ".part", ".crdownload"}
)

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// Ext returns the lowercased extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsMusic reports whether name has an audio extension.
func IsMusic(name string) bool {
	_, ok := musicExtensions[Ext(name)]
	return ok
}

// IsVideo reports whether name has a video extension.
func IsVideo(name string) bool {
	_, ok := videoExtensions[Ext(name)]
	return ok
}

// IsIgnored reports whether name should never be processed.
func IsIgnored(name string) bool {
	_, ok := ignoredExtensions[Ext(name)]
	return ok
}

// IsJunk reports whether name is a leftover that cleanup may delete.
func IsJunk(name string) bool {
	_, ok := junkExtensions[Ext(name)]
	return ok
}

// IsKnown reports whether the extension is one the parser may strip.
func IsKnown(ext string) bool {
	ext = strings.ToLower(ext)
	for _, m := range []map[string]struct{}{musicExtensions, videoExtensions, ignoredExtensions, junkExtensions} {
		if _, ok := m[ext]; ok {
			return true
		}
	}
	return false
}

// IsTemporary reports whether name carries an in-progress download suffix.
func IsTemporary(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range tempSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
