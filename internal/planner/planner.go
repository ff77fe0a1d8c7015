package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediasort/internal/config"
	"mediasort/internal/fileutil"
	"mediasort/internal/media"
	"mediasort/internal/services"
	"mediasort/internal/textutil"
)

var (
	// ErrNoDestination means neither the category root nor the other root is configured.
	ErrNoDestination = fmt.Errorf("%w: no destination root configured", services.ErrConfiguration)
	// ErrUnsafePath means a planned destination would leave its root.
	ErrUnsafePath = fmt.Errorf("%w: destination escapes category root", services.ErrValidation)
)

const (
	unknownArtist  = "Unknown Artist"
	maxCollisions  = 10000
	fallbackName   = "unnamed"
	unknownSeries  = "Unknown Series"
	unknownTitle   = "Unknown Title"
	unknownAlbum   = "Unknown Album"
	firstDiscLabel = "1"
)

// Roots are the configured category destinations. Empty roots are unset.
type Roots struct {
	TV    string
	Movie string
	Music string
	Other string
}

// RootsFromConfig extracts category roots from cfg.
func RootsFromConfig(cfg *config.Config) Roots {
	if cfg == nil {
		return Roots{}
	}
	return Roots{
		TV:    cfg.Paths.TVDir,
		Movie: cfg.Paths.MovieDir,
		Music: cfg.Paths.MusicDir,
		Other: cfg.Paths.OtherDir,
	}
}

func (r Roots) forCategory(category media.Category) string {
	switch category {
	case media.CategoryTV:
		return strings.TrimSpace(r.TV)
	case media.CategoryMovies:
		return strings.TrimSpace(r.Movie)
	case media.CategoryMusic:
		return strings.TrimSpace(r.Music)
	default:
		return strings.TrimSpace(r.Other)
	}
}

// Plan is a destination chosen for one file.
type Plan struct {
	Category media.Category `json:"category"`
	Root     string         `json:"root"`
	Path     string         `json:"path"`
}

// Dir returns the directory that will hold the file.
func (p Plan) Dir() string {
	return filepath.Dir(p.Path)
}

// Build computes the destination for result. It never touches the filesystem.
func Build(result media.Result, roots Roots) (Plan, error) {
	category := result.Category()
	root := roots.forCategory(category)
	var segments []string
	if root != "" {
		segments = layout(result)
	}
	if root == "" || segments == nil {
		category = media.CategoryOther
		root = roots.forCategory(media.CategoryOther)
		if root == "" {
			return Plan{}, ErrNoDestination
		}
		segments = []string{textutil.SanitizeOr(filepath.Base(result.Original), fallbackName)}
	}
	path, err := safeJoin(root, segments...)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Category: category, Root: filepath.Clean(root), Path: path}, nil
}

// layout returns the path segments below the category root, or nil when the
// result carries no usable payload.
func layout(result media.Result) []string {
	ext := strings.ToLower(result.Extension)
	switch {
	case result.Kind == media.KindMusic && result.Music != nil:
		return musicLayout(*result.Music, ext)
	case result.Kind == media.KindTV && result.TV != nil:
		return tvLayout(*result.TV, ext)
	case result.Kind == media.KindMovie && result.Movie != nil:
		return movieLayout(*result.Movie, ext)
	default:
		return nil
	}
}

func musicLayout(m media.Music, ext string) []string {
	artist := textutil.SanitizeOr(m.Artist, unknownArtist)
	album := textutil.SanitizeOr(m.Album, unknownAlbum)
	title := textutil.SanitizeOr(m.Title, unknownTitle)
	track := textutil.SanitizeName(m.Track)
	disc := textutil.SanitizeName(m.Disc)
	multiDisc := disc != "" && disc != firstDiscLabel

	var name string
	switch {
	case track != "" && multiDisc:
		name = fmt.Sprintf("%s-%s - %s%s", disc, track, title, ext)
	case track != "":
		name = fmt.Sprintf("%s - %s%s", track, title, ext)
	case artist == unknownArtist:
		name = title + ext
	default:
		name = fmt.Sprintf("%s - %s%s", artist, title, ext)
	}

	segments := []string{artist, album}
	if multiDisc {
		segments = append(segments, "Disc "+disc)
	}
	return append(segments, name)
}

func tvLayout(tv media.TV, ext string) []string {
	series := textutil.SanitizeOr(tv.Series, unknownSeries)
	folder := series
	if tv.Year != "" {
		folder = fmt.Sprintf("%s (%s)", series, tv.Year)
	}
	name := fmt.Sprintf("%s - S%sE%s", series, tv.Season, tv.Episode)
	if title := textutil.SanitizeName(tv.EpisodeTitle); title != "" {
		name += " - " + title
	}
	return []string{folder, name + ext}
}

func movieLayout(m media.Movie, ext string) []string {
	title := textutil.SanitizeOr(m.Title, unknownTitle)
	if m.Year != "" {
		return []string{fmt.Sprintf("%s (%s)%s", title, m.Year, ext)}
	}
	return []string{title + ext}
}

// safeJoin joins segments below root and rejects results outside it.
func safeJoin(root string, segments ...string) (string, error) {
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
			return "", fmt.Errorf("%w: segment %q", ErrUnsafePath, segment)
		}
	}
	root = filepath.Clean(root)
	path := filepath.Join(append([]string{root}, segments...)...)
	if path == root || !fileutil.IsWithin(root, path) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, path)
	}
	return path, nil
}

var renameFile = os.Rename

// Place moves src to the planned destination, creating directories and
// appending _1, _2, ... before the extension when the name is taken. It returns
// the final path.
func Place(src string, plan Plan) (string, error) {
	if plan.Path == "" {
		return "", ErrNoDestination
	}
	if !fileutil.IsWithin(plan.Root, plan.Path) {
		return "", ErrUnsafePath
	}
	if filepath.Clean(src) == filepath.Clean(plan.Path) {
		return plan.Path, nil
	}
	if err := os.MkdirAll(plan.Dir(), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "placement", "mkdir", "create destination directory", err)
	}

	dst, err := reserve(plan.Path)
	if err != nil {
		return "", err
	}
	// The reservation is an empty file; rename replaces it atomically. Across
	// filesystems the copy is renamed over it, so the name stays claimed.
	if err := renameFile(src, dst); err != nil {
		if !fileutil.IsCrossDevice(err) {
			_ = os.Remove(dst)
			return "", services.Wrap(services.ErrTransient, "placement", "rename", "move file", err)
		}
		if err := fileutil.ReplaceWithCopy(src, dst); err != nil {
			_ = os.Remove(dst)
			return "", services.Wrap(services.ErrTransient, "placement", "copy", "cross-device move", err)
		}
	}
	return dst, nil
}

// reserve claims the first free name derived from path by creating it
// exclusively, so concurrent placements never pick the same destination.
func reserve(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for attempt := 0; attempt <= maxCollisions; attempt++ {
		candidate := path
		if attempt > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, attempt, ext)
		}
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return candidate, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return "", services.Wrap(services.ErrTransient, "placement", "reserve", "claim destination name", err)
	}
	return "", services.Wrap(services.ErrValidation, "placement", "reserve", "exhausted collision suffixes", errors.New(path))
}
