package tmdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mediasort/internal/services/restclient"
)

// Result represents a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

// DisplayName returns the movie title or show name, whichever is set.
func (r Result) DisplayName() string {
	if strings.TrimSpace(r.Title) != "" {
		return strings.TrimSpace(r.Title)
	}
	return strings.TrimSpace(r.Name)
}

// Year returns the release or first-air year, or "" when unknown.
func (r Result) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

// Episode describes a single TMDB episode entry.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// SearchOptions contains optional parameters for TMDB searches.
type SearchOptions struct {
	Year int
}

// Searcher defines the TMDB operations used by the metadata resolver.
type Searcher interface {
	SearchMovie(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	GetEpisode(ctx context.Context, showID int64, season, episode int) (*Episode, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey   string
	language string
	rest     *restclient.Client
}

var _ Searcher = (*Client)(nil)

// New creates a TMDB client. opts.BaseURL must point at the v3 API root.
func New(apiKey, language string, opts restclient.Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("tmdb base url required")
	}
	opts.Name = "tmdb"
	return &Client{
		apiKey:   apiKey,
		language: strings.TrimSpace(language),
		rest:     restclient.New(opts),
	}, nil
}

// SearchMovie searches TMDB movies, narrowing by year when provided.
func (c *Client) SearchMovie(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.params()
	params["query"] = query
	if opts.Year > 0 {
		params["year"] = strconv.Itoa(opts.Year)
	}
	var payload Response
	if err := c.rest.GetJSON(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchTV searches TMDB shows, narrowing by first air year when provided.
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.params()
	params["query"] = query
	if opts.Year > 0 {
		params["first_air_date_year"] = strconv.Itoa(opts.Year)
	}
	var payload Response
	if err := c.rest.GetJSON(ctx, "/search/tv", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetEpisode fetches a single episode's details.
func (c *Client) GetEpisode(ctx context.Context, showID int64, season, episode int) (*Episode, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	if season < 0 || episode <= 0 {
		return nil, errors.New("season and episode must be positive")
	}
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", showID, season, episode)
	var payload Episode
	if err := c.rest.GetJSON(ctx, path, c.params(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) params() map[string]string {
	params := map[string]string{"api_key": c.apiKey}
	if c.language != "" {
		params["language"] = c.language
	}
	return params
}
