package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"mediasort/internal/config"
	"mediasort/internal/deps"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/parser"
	"mediasort/internal/services/acoustid"
	"mediasort/internal/services/musicbrainz"
	"mediasort/internal/services/restclient"
	"mediasort/internal/services/tmdb"
	"mediasort/internal/services/tvmaze"
	"mediasort/internal/tags"
	"mediasort/internal/textutil"
)

// Placeholder names used when nothing better is known.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UnknownSeries = "Unknown Series"
	UnknownTitle  = "Unknown Title"
)

// ShowSearcher corrects series names.
type ShowSearcher interface {
	SingleSearch(ctx context.Context, query string) (*tvmaze.Show, error)
}

// RecordingSearcher finds recordings by free text.
type RecordingSearcher interface {
	SearchRecording(ctx context.Context, query string) (*musicbrainz.Recording, error)
}

// Fingerprinter computes acoustic fingerprints.
type Fingerprinter interface {
	Compute(ctx context.Context, path string) (acoustid.Fingerprint, error)
}

// FingerprintMatcher resolves fingerprints to recordings.
type FingerprintMatcher interface {
	Lookup(ctx context.Context, fp acoustid.Fingerprint) ([]acoustid.Match, error)
}

// TagReader reads embedded music tags.
type TagReader func(path string) (tags.Tags, error)

// Dependencies are the services a Resolver may consult. Nil members are
// skipped.
type Dependencies struct {
	TVMaze        ShowSearcher
	MusicBrainz   RecordingSearcher
	TMDB          tmdb.Searcher
	AcoustID      FingerprintMatcher
	Fingerprinter Fingerprinter
	ReadTags      TagReader
}

// Resolver folds external lookups over parsed names.
type Resolver struct {
	deps              Dependencies
	networkCorrection bool
	minScore          float64
	logger            *slog.Logger
}

// New builds a Resolver with real clients derived from cfg. TMDB and AcoustID
// are only wired when their keys are configured; AcoustID additionally needs
// the fpcalc binary.
func New(cfg *config.Config, logger *slog.Logger) *Resolver {
	logger = logging.NewComponentLogger(logger, "metadata")
	d := Dependencies{ReadTags: tags.Read}

	base := restclient.Options{
		UserAgent:   cfg.Lookup.UserAgent,
		Timeout:     cfg.Lookup.Timeout(),
		MaxAttempts: cfg.Lookup.MaxAttempts,
	}
	tvOpts := base
	tvOpts.BaseURL = cfg.Lookup.TVMazeBaseURL
	d.TVMaze = tvmaze.New(tvOpts)

	mbOpts := base
	mbOpts.BaseURL = cfg.Lookup.MusicBrainzBaseURL
	d.MusicBrainz = musicbrainz.New(mbOpts)

	if cfg.TMDB.APIKey != "" {
		tmdbOpts := base
		tmdbOpts.BaseURL = cfg.TMDB.BaseURL
		if client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.Language, tmdbOpts); err != nil {
			logger.Warn("tmdb client initialization failed", logging.Error(err))
		} else {
			d.TMDB = client
		}
	}

	if cfg.AcoustID.APIKey != "" {
		if !deps.FpcalcAvailable(cfg) {
			logging.WarnWithContext(logger, "fpcalc not found; acoustic fingerprinting disabled", "fpcalc_missing",
				logging.String("binary", cfg.AcoustID.FpcalcBinary),
				logging.String(logging.FieldErrorHint, "install chromaprint or set acoustid.fpcalc_binary"),
				logging.String(logging.FieldImpact, "untagged music falls back to MusicBrainz"),
			)
		} else {
			acoustOpts := base
			acoustOpts.BaseURL = cfg.AcoustID.BaseURL
			if client, err := acoustid.New(cfg.AcoustID.APIKey, acoustOpts); err != nil {
				logger.Warn("acoustid client initialization failed", logging.Error(err))
			} else {
				d.AcoustID = client
				d.Fingerprinter = acoustid.NewFingerprinter(cfg.AcoustID.FpcalcBinary, nil)
			}
		}
	}

	return NewWithDependencies(cfg, logger, d)
}

// NewWithDependencies allows injecting service clients (used in tests).
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, d Dependencies) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Resolver{deps: d, logger: logger, minScore: 0.8}
	if cfg != nil {
		r.networkCorrection = cfg.Lookup.NetworkCorrection
		if cfg.AcoustID.MinScore > 0 {
			r.minScore = cfg.AcoustID.MinScore
		}
	}
	return r
}

// ResolveTV enriches a parsed episode name.
func (r *Resolver) ResolveTV(ctx context.Context, parsed parser.Parsed) media.TV {
	tv := media.TV{
		Series:       parsed.Title,
		Year:         parsed.Year,
		Season:       parsed.Season,
		Episode:      parsed.Episode,
		EpisodeFound: parsed.EpisodeFound,
	}

	if r.networkCorrection && r.deps.TVMaze != nil {
		show := r.searchShow(ctx, tv.Series)
		if show.Ok() {
			tv.Series = strings.TrimSpace(show.Value.Name)
			if year := show.Value.Year(); year != "" {
				tv.Year = year
			}
		}
	}

	if r.deps.TMDB != nil {
		match := r.searchTMDB(ctx, "tv", tv.Series, "")
		if match.Ok() {
			tv.Series = match.Value.DisplayName()
			if tv.Year == "" {
				tv.Year = match.Value.Year()
			}
			if parsed.EpisodeFound {
				if episode := r.episodeTitle(ctx, match.Value.ID, parsed.Season, parsed.Episode); episode.Ok() {
					tv.EpisodeTitle = episode.Value
				}
			}
		}
	}

	tv.Series = textutil.SanitizeOr(tv.Series, UnknownSeries)
	tv.EpisodeTitle = textutil.SanitizeName(tv.EpisodeTitle)
	return tv
}

// ResolveMovie enriches a parsed movie title.
func (r *Resolver) ResolveMovie(ctx context.Context, title, year string) media.Movie {
	movie := media.Movie{Title: title, Year: year}
	if r.deps.TMDB != nil {
		match := r.searchTMDB(ctx, "movie", title, year)
		if match.Ok() {
			movie.Title = match.Value.DisplayName()
			if y := match.Value.Year(); y != "" {
				movie.Year = y
			}
		}
	}
	movie.Title = textutil.SanitizeOr(movie.Title, UnknownTitle)
	return movie
}

// ResolveMusic reads tags and consults fingerprint and text services until an
// artist is known.
func (r *Resolver) ResolveMusic(ctx context.Context, path string) media.Music {
	name := filepath.Base(path)
	music := media.Music{
		Artist: UnknownArtist,
		Album:  UnknownAlbum,
		Title:  strings.TrimSuffix(name, filepath.Ext(name)),
	}

	if r.deps.ReadTags != nil {
		if embedded := r.readTags(ctx, path); embedded.Ok() {
			t := embedded.Value
			music.Artist = firstNonEmpty(t.Artist, music.Artist)
			music.Album = firstNonEmpty(t.Album, music.Album)
			music.Title = firstNonEmpty(t.Title, music.Title)
			music.Track = padTrack(t.Track)
			music.Disc = t.Disc
		}
	}

	if isUnknownArtist(music.Artist) && r.deps.AcoustID != nil && r.deps.Fingerprinter != nil {
		if match := r.fingerprintMatch(ctx, path); match.Ok() {
			music.Artist = firstNonEmpty(match.Value.Artist, music.Artist)
			music.Title = firstNonEmpty(match.Value.Title, music.Title)
		}
	}

	if isUnknownArtist(music.Artist) && r.networkCorrection && r.deps.MusicBrainz != nil {
		if rec := r.searchRecording(ctx, parser.Clean(name)); rec.Ok() {
			music.Title = firstNonEmpty(rec.Value.Title, music.Title)
			if !isUnknownArtist(rec.Value.Artist) {
				music.Artist = rec.Value.Artist
			}
			if music.Album == UnknownAlbum {
				music.Album = firstNonEmpty(rec.Value.Album, music.Album)
			}
		}
	}

	music.Artist = textutil.SanitizeOr(music.Artist, UnknownArtist)
	music.Album = textutil.SanitizeOr(music.Album, UnknownAlbum)
	music.Title = textutil.SanitizeOr(music.Title, UnknownTitle)
	music.Disc = textutil.SanitizeName(music.Disc)
	return music
}

func (r *Resolver) searchShow(ctx context.Context, query string) Lookup[tvmaze.Show] {
	if strings.TrimSpace(query) == "" {
		return absent[tvmaze.Show]()
	}
	show, err := r.deps.TVMaze.SingleSearch(ctx, query)
	result := fromResult(show, err)
	if result.Ok() && strings.TrimSpace(result.Value.Name) == "" {
		result = absent[tvmaze.Show]()
	}
	r.note(ctx, "tvmaze", query, result.State, result.Err)
	return result
}

func (r *Resolver) searchTMDB(ctx context.Context, kind, query, year string) Lookup[tmdb.Result] {
	if strings.TrimSpace(query) == "" {
		return absent[tmdb.Result]()
	}
	opts := tmdb.SearchOptions{}
	if y, err := strconv.Atoi(year); err == nil {
		opts.Year = y
	}
	var (
		resp *tmdb.Response
		err  error
	)
	if kind == "tv" {
		resp, err = r.deps.TMDB.SearchTV(ctx, query, opts)
	} else {
		resp, err = r.deps.TMDB.SearchMovie(ctx, query, opts)
	}
	result := pickResult(query, fromResult(resp, err))
	r.note(ctx, "tmdb_"+kind, query, result.State, result.Err)
	return result
}

// pickResult chooses the candidate whose name is closest to the query.
func pickResult(query string, resp Lookup[tmdb.Response]) Lookup[tmdb.Result] {
	if !resp.Ok() {
		return Lookup[tmdb.Result]{State: resp.State, Err: resp.Err}
	}
	names := make([]string, 0, len(resp.Value.Results))
	candidates := make([]tmdb.Result, 0, len(resp.Value.Results))
	for _, candidate := range resp.Value.Results {
		if candidate.DisplayName() == "" {
			continue
		}
		names = append(names, candidate.DisplayName())
		candidates = append(candidates, candidate)
	}
	idx, _ := textutil.BestMatch(query, names)
	if idx < 0 {
		return absent[tmdb.Result]()
	}
	return found(candidates[idx])
}

func (r *Resolver) episodeTitle(ctx context.Context, showID int64, season, episode string) Lookup[string] {
	s, errS := strconv.Atoi(season)
	e, errE := strconv.Atoi(episode)
	if errS != nil || errE != nil {
		return absent[string]()
	}
	details, err := r.deps.TMDB.GetEpisode(ctx, showID, s, e)
	result := fromResult(details, err)
	out := Lookup[string]{State: result.State, Err: result.Err}
	if result.Ok() {
		if name := strings.TrimSpace(result.Value.Name); name != "" {
			out.Value = name
		} else {
			out.State = Absent
		}
	}
	r.note(ctx, "tmdb_episode", fmt.Sprintf("%d S%sE%s", showID, season, episode), out.State, out.Err)
	return out
}

func (r *Resolver) readTags(ctx context.Context, path string) Lookup[tags.Tags] {
	t, err := r.deps.ReadTags(path)
	switch {
	case errors.Is(err, tags.ErrUnsupported):
		return absent[tags.Tags]()
	case err != nil:
		result := Lookup[tags.Tags]{State: Unavailable, Err: err}
		r.note(ctx, "tags", path, result.State, err)
		return result
	case t.Empty():
		return absent[tags.Tags]()
	default:
		return found(t)
	}
}

func (r *Resolver) fingerprintMatch(ctx context.Context, path string) Lookup[acoustid.Match] {
	fp, err := r.deps.Fingerprinter.Compute(ctx, path)
	if err != nil {
		r.note(ctx, "fpcalc", path, Unavailable, err)
		return Lookup[acoustid.Match]{State: Unavailable, Err: err}
	}
	matches, err := r.deps.AcoustID.Lookup(ctx, fp)
	if err != nil {
		result := fromResult[acoustid.Match](nil, err)
		r.note(ctx, "acoustid", path, result.State, err)
		return result
	}
	best, ok := acoustid.Best(matches, r.minScore)
	if !ok {
		r.note(ctx, "acoustid", path, Absent, nil)
		return absent[acoustid.Match]()
	}
	return found(best)
}

func (r *Resolver) searchRecording(ctx context.Context, query string) Lookup[musicbrainz.Recording] {
	if strings.TrimSpace(query) == "" {
		return absent[musicbrainz.Recording]()
	}
	rec, err := r.deps.MusicBrainz.SearchRecording(ctx, query)
	result := fromResult(rec, err)
	r.note(ctx, "musicbrainz", query, result.State, result.Err)
	return result
}

func (r *Resolver) note(ctx context.Context, service, query string, state State, err error) {
	logger := logging.WithContext(ctx, r.logger)
	switch state {
	case Absent:
		logger.Debug("metadata lookup miss",
			logging.String("service", service),
			logging.String("query", query),
		)
	case Unavailable:
		logging.WarnWithContext(logger, "metadata lookup unavailable", "metadata_lookup_unavailable",
			logging.String("service", service),
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network connectivity and API keys"),
			logging.String(logging.FieldImpact, "falling back to names parsed from the file"),
		)
	}
}

func isUnknownArtist(artist string) bool {
	switch strings.ToLower(strings.TrimSpace(artist)) {
	case "", "unknown", strings.ToLower(UnknownArtist):
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func padTrack(track string) string {
	track = strings.TrimSpace(track)
	if n, err := strconv.Atoi(track); err == nil && n >= 0 {
		return fmt.Sprintf("%02d", n)
	}
	return track
}
