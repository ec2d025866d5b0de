// Package places is a client for the Google Places API (new Text Search
// plus Details) and the Geocoding API.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultSearchBaseURL  = "https://places.googleapis.com/v1"
	defaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api"

	searchFieldMask  = "places.id,places.displayName,places.formattedAddress,nextPageToken"
	detailsFieldMask = "id,displayName,formattedAddress,websiteUri,internationalPhoneNumber"

	// Text Search caps pages at 20 places.
	maxPageSize = 20

	metersPerMile = 1609.34
)

// Client performs Places API operations.
type Client interface {
	Geocode(ctx context.Context, location string) (*LatLng, error)
	TextSearch(ctx context.Context, params TextSearchParams) (*TextSearchResponse, error)
	PlaceDetails(ctx context.Context, placeID string) (*Place, error)

	// SearchLocations runs a text search anchored at each location and
	// merges the pages, deduplicating by place ID.
	SearchLocations(ctx context.Context, baseQuery string, locations []string, maxResults int) ([]Place, error)
}

// LatLng is a geographic point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a single place from search or details.
type Place struct {
	ID               string      `json:"id"`
	DisplayName      DisplayName `json:"displayName"`
	FormattedAddress string      `json:"formattedAddress"`
	WebsiteURI       string      `json:"websiteUri,omitempty"`
	Phone            string      `json:"internationalPhoneNumber,omitempty"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// TextSearchParams configures one Text Search request.
type TextSearchParams struct {
	Query        string
	Bias         *LatLng
	RadiusMeters float64
	PageToken    string
	MaxResults   int
}

// TextSearchResponse is one page of Text Search results.
type TextSearchResponse struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"nextPageToken"`
}

// Option configures the client.
type Option func(*httpClient)

// WithSearchBaseURL overrides the Places API base URL.
func WithSearchBaseURL(u string) Option {
	return func(c *httpClient) {
		c.searchBaseURL = u
	}
}

// WithGeocodeBaseURL overrides the Geocoding API base URL.
func WithGeocodeBaseURL(u string) Option {
	return func(c *httpClient) {
		c.geocodeBaseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRadiusMiles sets the location bias radius for SearchLocations.
func WithRadiusMiles(miles float64) Option {
	return func(c *httpClient) {
		c.radiusMeters = miles * metersPerMile
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey         string
	searchBaseURL  string
	geocodeBaseURL string
	radiusMeters   float64
	http           *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:         apiKey,
		searchBaseURL:  defaultSearchBaseURL,
		geocodeBaseURL: defaultGeocodeBaseURL,
		radiusMeters:   25 * metersPerMile,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(0.5), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form location to coordinates. A location the
// API cannot resolve returns (nil, nil).
func (c *httpClient) Geocode(ctx context.Context, location string) (*LatLng, error) {
	if location == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("address", location)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.geocodeBaseURL+"/geocode/json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create geocode request")
	}

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal geocode response")
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	loc := result.Results[0].Geometry.Location
	return &loc, nil
}

type textSearchRequest struct {
	TextQuery      string        `json:"textQuery"`
	MaxResultCount int           `json:"maxResultCount"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
	PageToken      string        `json:"pageToken,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center center  `json:"center"`
	Radius float64 `json:"radius"`
}

type center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c *httpClient) TextSearch(ctx context.Context, params TextSearchParams) (*TextSearchResponse, error) {
	maxResults := params.MaxResults
	if maxResults <= 0 || maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	reqBody := textSearchRequest{
		TextQuery:      params.Query,
		MaxResultCount: maxResults,
		PageToken:      params.PageToken,
	}
	if params.Bias != nil && params.RadiusMeters > 0 {
		reqBody.LocationBias = &locationBias{
			Circle: circle{
				Center: center{Latitude: params.Bias.Lat, Longitude: params.Bias.Lng},
				Radius: params.RadiusMeters,
			},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.searchBaseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	respBody, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var result TextSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	return &result, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.searchBaseURL+"/places/"+placeID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create details request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var place Place
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details")
	}
	return &place, nil
}

func (c *httpClient) SearchLocations(ctx context.Context, baseQuery string, locations []string, maxResults int) ([]Place, error) {
	if maxResults <= 0 {
		maxResults = 30
	}

	var all []Place
	seen := make(map[string]struct{})

	for _, loc := range locations {
		coords, err := c.Geocode(ctx, loc)
		if err != nil {
			return all, err
		}
		if coords == nil {
			continue
		}

		query := baseQuery + " in " + loc
		pageToken := ""
		for len(all) < maxResults {
			page, err := c.TextSearch(ctx, TextSearchParams{
				Query:        query,
				Bias:         coords,
				RadiusMeters: c.radiusMeters,
				PageToken:    pageToken,
				MaxResults:   maxResults - len(all),
			})
			if err != nil {
				return all, err
			}

			for _, p := range page.Places {
				if p.ID == "" {
					continue
				}
				if _, dup := seen[p.ID]; dup {
					continue
				}
				seen[p.ID] = struct{}{}
				all = append(all, p)
				if len(all) >= maxResults {
					break
				}
			}

			pageToken = page.NextPageToken
			if pageToken == "" || len(all) >= maxResults {
				break
			}
		}

		if len(all) >= maxResults {
			break
		}
	}
	return all, nil
}

func (c *httpClient) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit wait")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// MapsURL is the canonical maps link for a place, used as the lead URL.
func MapsURL(placeID string) string {
	if placeID == "" {
		return ""
	}
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}
