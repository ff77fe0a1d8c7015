package tvmaze

import (
	"context"
	"errors"
	"strings"

	"mediasort/internal/services"
	"mediasort/internal/services/restclient"
)

// Show is the subset of a TVMaze show record used for title correction.
type Show struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
}

// Year returns the premiere year, or "" when unknown.
func (s Show) Year() string {
	if len(s.Premiered) >= 4 {
		return s.Premiered[:4]
	}
	return ""
}

// Client queries the public TVMaze API.
type Client struct {
	rest *restclient.Client
}

// New creates a TVMaze client.
func New(opts restclient.Options) *Client {
	opts.Name = "tvmaze"
	return &Client{rest: restclient.New(opts)}
}

// SingleSearch returns the best matching show for query. A miss returns an
// error marked services.ErrNotFound.
func (c *Client) SingleSearch(ctx context.Context, query string) (*Show, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tvmaze", "singlesearch", "empty query", nil)
	}
	var show Show
	if err := c.rest.GetJSON(ctx, "/singlesearch/shows", map[string]string{"q": query}, &show); err != nil {
		return nil, err
	}
	if strings.TrimSpace(show.Name) == "" {
		return nil, services.Wrap(services.ErrNotFound, "tvmaze", "singlesearch", "empty show name", nil)
	}
	return &show, nil
}

// IsMiss reports whether err means the service answered but had no match.
func IsMiss(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}
