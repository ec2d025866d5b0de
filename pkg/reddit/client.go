// Package reddit resolves the true creation time of reddit posts via the
// public .json endpoint.
package reddit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultUserAgent = "LeadFinderBot/1.0"

// Client resolves post creation times.
type Client interface {
	// PostCreatedAt fetches the authoritative creation time of the post at
	// postURL. Returns an error when the post time cannot be resolved.
	PostCreatedAt(ctx context.Context, postURL string) (time.Time, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent overrides the request user-agent string.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a reddit lookup client with a fixed short timeout.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// listing mirrors the slice returned by <post>.json: the first element's
// children[0].data.created_utc is the post time.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *httpClient) PostCreatedAt(ctx context.Context, postURL string) (time.Time, error) {
	jsonURL := strings.TrimRight(postURL, "/") + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "reddit: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "reddit: fetch post")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "reddit: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, eris.Errorf("reddit: unexpected status %d", resp.StatusCode)
	}

	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return time.Time{}, eris.Wrap(err, "reddit: unmarshal listing")
	}

	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return time.Time{}, eris.New("reddit: listing has no post data")
	}
	created := listings[0].Data.Children[0].Data.CreatedUTC
	if created <= 0 {
		return time.Time{}, eris.New("reddit: missing created_utc")
	}

	return time.Unix(int64(created), 0).UTC(), nil
}
