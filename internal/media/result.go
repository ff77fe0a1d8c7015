package media

import (
	"fmt"
	"strings"
)

// Kind identifies which payload a Result carries.
type Kind string

const (
	KindTV           Kind = "tv"
	KindMovie        Kind = "movie"
	KindMusic        Kind = "music"
	KindUnclassified Kind = "unclassified"
)

// Category is the stats and history bucket for a placed file.
type Category string

const (
	CategoryTV     Category = "tv"
	CategoryMovies Category = "movies"
	CategoryMusic  Category = "music"
	CategoryOther  Category = "other"
)

// Categories lists every bucket in display order.
var Categories = []Category{CategoryTV, CategoryMovies, CategoryMusic, CategoryOther}

// TV is the payload for an episode.
type TV struct {
	Series       string `json:"series"`
	Year         string `json:"year,omitempty"`
	Season       string `json:"season"`
	Episode      string `json:"episode"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	EpisodeFound bool   `json:"episode_found"`
}

// Movie is the payload for a feature film.
type Movie struct {
	Title string `json:"title"`
	Year  string `json:"year,omitempty"`
}

// Music is the payload for an audio track. Track and Disc are kept as the
// strings found in tags; Track is zero-padded to two digits when numeric.
type Music struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`
	Track  string `json:"track,omitempty"`
	Disc   string `json:"disc,omitempty"`
}

// Result is the classification of one file. Exactly one payload pointer is set
// for TV, movie, and music kinds; none for unclassified.
type Result struct {
	Kind      Kind   `json:"kind"`
	Original  string `json:"original"`
	Extension string `json:"extension"`
	TV        *TV    `json:"tv,omitempty"`
	Movie     *Movie `json:"movie,omitempty"`
	Music     *Music `json:"music,omitempty"`
}

// NewTV builds a TV result.
func NewTV(original, ext string, tv TV) Result {
	return Result{Kind: KindTV, Original: original, Extension: ext, TV: &tv}
}

// NewMovie builds a movie result.
func NewMovie(original, ext string, movie Movie) Result {
	return Result{Kind: KindMovie, Original: original, Extension: ext, Movie: &movie}
}

// NewMusic builds a music result.
func NewMusic(original, ext string, music Music) Result {
	return Result{Kind: KindMusic, Original: original, Extension: ext, Music: &music}
}

// Unclassified builds a result for a file that is none of the known kinds.
func Unclassified(original, ext string) Result {
	return Result{Kind: KindUnclassified, Original: original, Extension: ext}
}

// Category maps the kind to its stats bucket.
func (r Result) Category() Category {
	switch r.Kind {
	case KindTV:
		return CategoryTV
	case KindMovie:
		return CategoryMovies
	case KindMusic:
		return CategoryMusic
	default:
		return CategoryOther
	}
}

// Valid reports whether the payload matches the kind.
func (r Result) Valid() bool {
	switch r.Kind {
	case KindTV:
		return r.TV != nil && r.Movie == nil && r.Music == nil
	case KindMovie:
		return r.Movie != nil && r.TV == nil && r.Music == nil
	case KindMusic:
		return r.Music != nil && r.TV == nil && r.Movie == nil
	case KindUnclassified:
		return r.TV == nil && r.Movie == nil && r.Music == nil
	default:
		return false
	}
}

// Summary renders a one-line human description.
func (r Result) Summary() string {
	switch {
	case r.Kind == KindTV && r.TV != nil:
		s := fmt.Sprintf("%s S%sE%s", r.TV.Series, r.TV.Season, r.TV.Episode)
		if r.TV.Year != "" {
			s = fmt.Sprintf("%s (%s) S%sE%s", r.TV.Series, r.TV.Year, r.TV.Season, r.TV.Episode)
		}
		if r.TV.EpisodeTitle != "" {
			s += " - " + r.TV.EpisodeTitle
		}
		return s
	case r.Kind == KindMovie && r.Movie != nil:
		if r.Movie.Year != "" {
			return fmt.Sprintf("%s (%s)", r.Movie.Title, r.Movie.Year)
		}
		return r.Movie.Title
	case r.Kind == KindMusic && r.Music != nil:
		parts := []string{r.Music.Artist, r.Music.Album, r.Music.Title}
		return strings.Join(parts, " / ")
	default:
		return r.Original
	}
}
