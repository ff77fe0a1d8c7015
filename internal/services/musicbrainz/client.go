package musicbrainz

import (
	"context"
	"strings"

	"mediasort/internal/services"
	"mediasort/internal/services/restclient"
)

// Recording is a MusicBrainz recording search hit reduced to what placement needs.
type Recording struct {
	ID     string
	Title  string
	Artist string
	Album  string
	Score  int
}

type searchResponse struct {
	Recordings []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Score        int    `json:"score"`
		ArtistCredit []struct {
			Name string `json:"name"`
		} `json:"artist-credit"`
		Releases []struct {
			Title string `json:"title"`
		} `json:"releases"`
	} `json:"recordings"`
}

// Client queries the MusicBrainz web service. MusicBrainz rejects anonymous
// clients, so the user agent must be set.
type Client struct {
	rest *restclient.Client
}

// New creates a MusicBrainz client.
func New(opts restclient.Options) *Client {
	opts.Name = "musicbrainz"
	return &Client{rest: restclient.New(opts)}
}

// SearchRecording returns the top recording for a free-text query.
func (c *Client) SearchRecording(ctx context.Context, query string) (*Recording, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "recording", "empty query", nil)
	}
	var payload searchResponse
	params := map[string]string{"query": query, "fmt": "json", "limit": "5"}
	if err := c.rest.GetJSON(ctx, "/recording/", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Recordings) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "musicbrainz", "recording", "no recordings", nil)
	}
	top := payload.Recordings[0]
	rec := &Recording{ID: top.ID, Title: strings.TrimSpace(top.Title), Score: top.Score, Artist: "Unknown"}
	if len(top.ArtistCredit) > 0 && strings.TrimSpace(top.ArtistCredit[0].Name) != "" {
		rec.Artist = strings.TrimSpace(top.ArtistCredit[0].Name)
	}
	if len(top.Releases) > 0 {
		rec.Album = strings.TrimSpace(top.Releases[0].Title)
	}
	return rec, nil
}
