// Package cse is a client for the Google Custom Search JSON API.
package cse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

	// The API returns at most 10 items per request.
	maxPerPage = 10

	maxRetries = 3
)

// Client performs Custom Search API operations.
type Client interface {
	// Search fetches one page of results. start is the 1-based index of
	// the first result.
	Search(ctx context.Context, query string, num, start int) ([]Result, error)

	// SearchPages fetches up to total results across sequential pages.
	// It stops early on an empty page, and on a page error it returns
	// what it has so far. The second return value is the number of API
	// requests spent.
	SearchPages(ctx context.Context, query string, total int) ([]Result, int, error)
}

// Result is one search hit.
type Result struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	cseID   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Custom Search client for the given API key and
// search engine ID.
func NewClient(apiKey, cseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		cseID:   cseID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Items []Result `json:"items"`
}

func (c *httpClient) Search(ctx context.Context, query string, num, start int) ([]Result, error) {
	if num <= 0 || num > maxPerPage {
		num = maxPerPage
	}
	if start < 1 {
		start = 1
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("start", strconv.Itoa(start))

	body, err := c.get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "cse: unmarshal response")
	}
	return result.Items, nil
}

func (c *httpClient) SearchPages(ctx context.Context, query string, total int) ([]Result, int, error) {
	if total <= 0 {
		total = maxPerPage
	}
	pages := (total + maxPerPage - 1) / maxPerPage

	var all []Result
	queries := 0
	for page := 0; page < pages; page++ {
		start := page*maxPerPage + 1

		results, err := c.Search(ctx, query, maxPerPage, start)
		queries++
		if err != nil {
			// Quota exhaustion mid-run is routine; partial results are
			// still worth keeping.
			if len(all) > 0 {
				return all, queries, nil
			}
			return nil, queries, err
		}
		if len(results) == 0 {
			break
		}
		all = append(all, results...)
	}
	return all, queries, nil
}

// get issues a rate-limited GET with retries on 429 and 5xx.
func (c *httpClient) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "cse: rate limit wait")
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "cse: retry wait")
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		body, retryable, err := c.doOnce(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *httpClient) doOnce(ctx context.Context, u string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "cse: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, eris.Wrap(err, "cse: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, eris.Wrap(err, "cse: read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, eris.Errorf("cse: unexpected status %d: %s", resp.StatusCode, string(body))
	default:
		return nil, false, eris.Errorf("cse: unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
