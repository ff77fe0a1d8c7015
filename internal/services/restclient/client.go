package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"mediasort/internal/services"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxAttempts = 3
	defaultRetryWait   = 2 * time.Second
)

// Options configures a lookup client shared by the metadata services.
type Options struct {
	// Name labels errors, e.g. "tvmaze".
	Name        string
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	// RetryWait is the unit of the rate-limit backoff: attempt n sleeps n*RetryWait.
	RetryWait  time.Duration
	HTTPClient *http.Client
}

// Client wraps a resty client with the pipeline's retry and error policy.
type Client struct {
	name string
	http *resty.Client
}

// New builds a client. Every request is bounded by Timeout and retried up to
// MaxAttempts total attempts on 429, 5xx and transport errors.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "lookup"
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.MaxAttempts - 1).
		SetRetryWaitTime(opts.RetryWait / 2).
		SetRetryMaxWaitTime(time.Duration(opts.MaxAttempts) * opts.RetryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			if resp == nil {
				return false
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests && resp.Request != nil {
				return time.Duration(resp.Request.Attempt) * opts.RetryWait, nil
			}
			return opts.RetryWait / 2, nil
		})
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		rc.SetHeader("User-Agent", ua)
	}
	return &Client{name: name, http: rc}
}

// GetJSON issues a GET against path with the given query and decodes the JSON
// body into out. A 404 maps to services.ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, c.name, "GET "+path, "request failed", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, c.name, "GET "+path, "no match", nil)
	}
	if resp.IsError() {
		return services.Wrap(services.ErrTransient, c.name, "GET "+path, fmt.Sprintf("status %s", resp.Status()), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return services.Wrap(services.ErrValidation, c.name, "GET "+path, "decode response", err)
	}
	return nil
}

// Resty exposes the underlying client for callers that need other verbs.
func (c *Client) Resty() *resty.Client {
	return c.http
}
