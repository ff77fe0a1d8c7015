package acoustid

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"mediasort/internal/services"
	"mediasort/internal/services/restclient"
)

// Match is an AcoustID hit carrying the first linked recording.
type Match struct {
	Score  float64
	Title  string
	Artist string
}

type lookupResponse struct {
	Status  string `json:"status"`
	Results []struct {
		ID         string  `json:"id"`
		Score      float64 `json:"score"`
		Recordings []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"recordings"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client queries the AcoustID lookup API.
type Client struct {
	apiKey string
	rest   *restclient.Client
}

// New creates an AcoustID client.
func New(apiKey string, opts restclient.Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("acoustid api key required")
	}
	opts.Name = "acoustid"
	return &Client{apiKey: apiKey, rest: restclient.New(opts)}, nil
}

// Lookup returns matches in service order, skipping results without a titled
// recording.
func (c *Client) Lookup(ctx context.Context, fp Fingerprint) ([]Match, error) {
	params := map[string]string{
		"client":      c.apiKey,
		"meta":        "recordings",
		"duration":    strconv.Itoa(fp.Seconds()),
		"fingerprint": fp.Fingerprint,
	}
	var payload lookupResponse
	if err := c.rest.GetJSON(ctx, "/lookup", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		msg := "lookup rejected"
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return nil, services.Wrap(services.ErrValidation, "acoustid", "lookup", msg, nil)
	}
	matches := make([]Match, 0, len(payload.Results))
	for _, result := range payload.Results {
		for _, rec := range result.Recordings {
			if strings.TrimSpace(rec.Title) == "" || len(rec.Artists) == 0 {
				continue
			}
			matches = append(matches, Match{
				Score:  result.Score,
				Title:  strings.TrimSpace(rec.Title),
				Artist: strings.TrimSpace(rec.Artists[0].Name),
			})
			break
		}
	}
	return matches, nil
}

// Best returns the first match scoring strictly above minScore.
func Best(matches []Match, minScore float64) (Match, bool) {
	for _, m := range matches {
		if m.Score > minScore {
			return m, true
		}
	}
	return Match{}, false
}
