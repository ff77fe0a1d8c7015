package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediasort/internal/media"
	"mediasort/internal/textutil"
)

// Parsed is the local, network-free reading of a file name.
type Parsed struct {
	// Cleaned is the release name with decoration removed, episode marker included.
	Cleaned string `json:"cleaned"`
	// Title is the series or movie title without year or episode marker.
	Title        string `json:"title"`
	Year         string `json:"year,omitempty"`
	Season       string `json:"season"`
	Episode      string `json:"episode"`
	EpisodeFound bool   `json:"episode_found"`
	TVHint       bool   `json:"tv_hint"`
}

var (
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]`)
	parenPattern   = regexp.MustCompile(`\(([^()]*)\)`)
	yearPattern    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	keepParen      = regexp.MustCompile(`(?i)^(?:\d{4}|US|UK|Extended)$`)
	emptyParen     = regexp.MustCompile(`\(\s*\)`)

	// Anything from the first of these onwards is release decoration.
	decorationStart = regexp.MustCompile(`(?i)\b(?:480p|720p|1080p|2160p|4k|hdr|bluray|web\s*dl|webrip|dvdrip|hdtv|x264|x265|h264|hevc|aac|ac3|dts|atmos|truehd)\b`)
	releaseTokens   = regexp.MustCompile(`(?i)\b(?:480p|720p|1080p|2160p|4k|hdr|bluray|web\s*dl|webrip|dvdrip|hdtv|x264|x265|h264|hevc|aac|ac3|dts|atmos|truehd|rarbg|yify|yts|eztv|psa|tgx|unrated|director'?s\s+cut|remastered)\b`)

	episodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:s|season)\s?(\d{1,2})\s?(?:e|x|episode)\s?(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,2})\b`),
	}
	tvHintPattern = regexp.MustCompile(`(?i)\b(?:s\d+|season)`)

	titleCaser = cases.Title(language.English)
)

// Clean turns a release file name into a human title. It is deterministic and
// idempotent: Clean(Clean(x)) == Clean(x).
func Clean(filename string) string {
	name := stripKnownExt(filename)
	name = bracketPattern.ReplaceAllString(name, " ")
	name = replaceSeparators(name)
	return cleanTitle(name)
}

// Parse extracts title, year, and episode numbers from a file name. With no
// episode marker the result defaults to S01E01 with EpisodeFound unset.
func Parse(filename string) Parsed {
	name := stripKnownExt(filename)
	name = bracketPattern.ReplaceAllString(name, " ")
	name = replaceSeparators(name)

	out := Parsed{
		Cleaned: cleanTitle(name),
		Season:  "01",
		Episode: "01",
	}

	titleSource := name
	for _, pattern := range episodePatterns {
		loc := pattern.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		season, _ := strconv.Atoi(name[loc[2]:loc[3]])
		episode, _ := strconv.Atoi(name[loc[4]:loc[5]])
		out.Season = fmt.Sprintf("%02d", season)
		out.Episode = fmt.Sprintf("%02d", episode)
		out.EpisodeFound = true
		if prefix := strings.TrimSpace(name[:loc[0]]); prefix != "" {
			titleSource = prefix
		}
		break
	}
	out.TVHint = out.EpisodeFound || tvHintPattern.MatchString(filename)

	title := cleanTitle(titleSource)
	out.Title, out.Year = MovieTitle(title)
	if out.Title == "" {
		out.Title = title
		out.Year = ""
	}
	return out
}

// IsTV reports whether a file name looks like an episode.
func IsTV(filename string) bool {
	return Parse(filename).TVHint
}

// MovieTitle splits a cleaned title into the title and its release year.
func MovieTitle(cleaned string) (string, string) {
	loc := pickYear(cleaned)
	if loc == nil {
		return strings.TrimSpace(cleaned), ""
	}
	year := cleaned[loc[0]:loc[1]]
	rest := cleaned[:loc[0]] + cleaned[loc[1]:]
	rest = emptyParen.ReplaceAllString(rest, " ")
	rest = textutil.CollapseSpaces(rest)
	rest = strings.TrimLeft(strings.TrimRight(rest, " ("), " )")
	return rest, year
}

func stripKnownExt(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && media.IsKnown(ext) {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

func replaceSeparators(name string) string {
	return strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(name)
}

func cleanTitle(name string) string {
	fallback := textutil.CollapseSpaces(name)

	name = cutAfterYear(name)

	if loc := decorationStart.FindStringIndex(name); loc != nil && strings.TrimSpace(name[:loc[0]]) != "" {
		name = name[:loc[0]]
	}
	name = releaseTokens.ReplaceAllString(name, " ")

	name = parenPattern.ReplaceAllStringFunc(name, func(group string) string {
		content := strings.TrimSpace(group[1 : len(group)-1])
		if keepParen.MatchString(content) {
			return " \x00" + content + "\x01"
		}
		return " "
	})
	// Stray parentheses are dropped; kept groups are restored afterwards.
	name = strings.NewReplacer("(", " ", ")", " ").Replace(name)
	name = strings.NewReplacer("\x00", "(", "\x01", ")").Replace(name)
	name = textutil.CollapseSpaces(name)
	if name == "" {
		// Every word sat inside a dropped group; keep the words, still without release tokens.
		unwrapped := strings.NewReplacer("(", " ", ")", " ").Replace(fallback)
		name = textutil.CollapseSpaces(releaseTokens.ReplaceAllString(unwrapped, " "))
		if name == "" {
			name = textutil.CollapseSpaces(unwrapped)
		}
	}
	if name != "" && strings.ToLower(name) == name {
		name = titleCaser.String(name)
	}
	return name
}

// cutAfterYear drops everything after the release year, keeping a closing
// parenthesis that wraps it.
func cutAfterYear(name string) string {
	loc := pickYear(name)
	if loc == nil {
		return name
	}
	end := loc[1]
	if end < len(name) && name[end] == ')' {
		end++
	}
	return name[:end]
}

// pickYear returns the first year preceded by some title text, so that titles
// which are themselves years ("1917 2019") keep their name.
func pickYear(name string) []int {
	matches := yearPattern.FindAllStringIndex(name, -1)
	if len(matches) == 0 {
		return nil
	}
	for _, m := range matches {
		if strings.Trim(name[:m[0]], " (") != "" {
			return m
		}
	}
	return matches[0]
}
