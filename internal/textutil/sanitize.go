package textutil

import (
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeName strips characters that are invalid in file names on common
// filesystems and drops trailing dots and spaces. The result may be empty.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.TrimRight(strings.TrimSpace(name), ". ")
}

// SanitizeOr sanitizes name and substitutes fallback when nothing usable is left.
func SanitizeOr(name, fallback string) string {
	if cleaned := SanitizeName(name); cleaned != "" {
		return cleaned
	}
	return fallback
}

// CollapseSpaces folds runs of whitespace into single spaces and trims the ends.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
