// Package pipeline orchestrates one lead discovery run: query building,
// search, relevance annotation, recency filtering, contact extraction,
// and persistence.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homefront-labs/leadscout/internal/extract"
	"github.com/homefront-labs/leadscout/internal/match"
	"github.com/homefront-labs/leadscout/internal/model"
	"github.com/homefront-labs/leadscout/internal/query"
	"github.com/homefront-labs/leadscout/internal/recency"
	"github.com/homefront-labs/leadscout/internal/store"
	"github.com/homefront-labs/leadscout/internal/templates"
	"github.com/homefront-labs/leadscout/pkg/cse"
	"github.com/homefront-labs/leadscout/pkg/places"
)

const defaultRedditMaxAgeDays = 60

// ErrNoLocations is returned when a run is started without any target
// locations.
var ErrNoLocations = eris.New("pipeline: no locations given")

// Pipeline wires the search collaborators to the store.
type Pipeline struct {
	search  cse.Client
	places  places.Client // nil when Places is not configured
	recency *recency.Filter
	store   store.Store
	reg     *templates.Registry
}

// New creates a Pipeline with all dependencies.
func New(search cse.Client, placesClient places.Client, rec *recency.Filter, st store.Store, reg *templates.Registry) *Pipeline {
	return &Pipeline{
		search:  search,
		places:  placesClient,
		recency: rec,
		store:   st,
		reg:     reg,
	}
}

// RunParams configure one discovery run.
type RunParams struct {
	Template         string
	Locations        []string
	Sites            []string // overrides the template's sites when set
	MaxResults       int
	IncludeEmails    bool
	Strict           bool
	UsePlaces        bool
	RedditMaxAgeDays int
}

// RunResult summarizes what a run produced.
type RunResult struct {
	Query          string       `json:"query"`
	ResultsFetched int          `json:"results_fetched"`
	Kept           int          `json:"kept"`
	NewLeads       []model.Lead `json:"new_leads"`
	DuplicateLeads int          `json:"duplicate_leads"`
	Failed         int          `json:"failed"`
	APIQueriesUsed int          `json:"api_queries_used"`
}

// Run executes a full discovery run for one template.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	if len(params.Locations) == 0 {
		return nil, ErrNoLocations
	}

	tmpl, err := p.reg.Get(params.Template)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("template", tmpl.Name),
		zap.Strings("locations", params.Locations),
	)

	sites := params.Sites
	if len(sites) == 0 {
		sites = tmpl.Sites
	}
	var emailDomains []string
	if params.IncludeEmails {
		emailDomains = templates.EmailDomains
	}

	q := query.Build(query.Params{
		Keywords:         tmpl.Keywords,
		Locations:        params.Locations,
		Sites:            sites,
		EmailDomains:     emailDomains,
		ExcludeTerms:     tmpl.ExcludeTerms,
		IntentPhrases:    tmpl.IntentPhrases,
		RedditSubreddits: tmpl.RedditSubreddits,
	})
	log.Info("pipeline: starting run", zap.String("query", q))

	result := &RunResult{Query: q}

	raw, queries, err := p.search.SearchPages(ctx, q, params.MaxResults)
	result.APIQueriesUsed = queries
	if err != nil {
		return result, eris.Wrap(err, "pipeline: search")
	}

	results := make([]model.SearchResult, len(raw))
	for i, r := range raw {
		results[i] = model.SearchResult{
			Title:       r.Title,
			Snippet:     r.Snippet,
			Link:        r.Link,
			DisplayLink: r.DisplayLink,
		}
	}

	// Strict mode drops anything without a keyword or intent signal.
	// Applied here so Places listings below are never subjected to it.
	if params.Strict {
		before := len(results)
		results = match.StrictFilter(results, tmpl.Keywords, tmpl.IntentPhrases)
		log.Info("pipeline: strict filter",
			zap.Int("before", before), zap.Int("after", len(results)))
	}

	result.ResultsFetched = len(raw)

	placeContacts := map[string]places.Place{}
	if params.UsePlaces && p.places != nil {
		placeResults, err := p.fetchPlaces(ctx, tmpl, params, placeContacts)
		if err != nil {
			log.Warn("pipeline: places search degraded", zap.Error(err))
		}
		result.ResultsFetched += len(placeResults)
		results = append(results, placeResults...)
	}

	maxAge := params.RedditMaxAgeDays
	if maxAge <= 0 {
		maxAge = defaultRedditMaxAgeDays
	}
	results, postTimes := p.recency.Apply(ctx, results, maxAge)

	// Surface allowed-location mentions first so new leads come back in
	// priority order.
	allowed := match.ParseLocations(params.Locations)
	results = match.RankByLocation(results, allowed)

	candidates := p.annotate(results, tmpl, allowed, postTimes, placeContacts)
	result.Kept = len(candidates)

	if len(candidates) == 0 {
		log.Info("pipeline: no eligible candidates")
		return result, nil
	}

	added, err := p.store.AddLeads(ctx, candidates, tmpl.Name, params.Locations)
	if added != nil {
		result.NewLeads = added.NewLeads
		result.DuplicateLeads = len(added.DuplicateLeads)
		result.Failed = added.Failed
	}
	if err != nil {
		return result, eris.Wrap(err, "pipeline: store leads")
	}

	log.Info("pipeline: run complete",
		zap.Int("fetched", result.ResultsFetched),
		zap.Int("kept", result.Kept),
		zap.Int("new", len(result.NewLeads)),
		zap.Int("duplicates", result.DuplicateLeads),
		zap.Int("api_queries", result.APIQueriesUsed),
	)
	return result, nil
}

// fetchPlaces runs the Places leg and returns its listings as search
// results, stashing per-URL contact details for annotation.
func (p *Pipeline) fetchPlaces(ctx context.Context, tmpl templates.Template, params RunParams, contacts map[string]places.Place) ([]model.SearchResult, error) {
	baseQuery := tmpl.PlacesQuery
	if baseQuery == "" {
		baseQuery = strings.ReplaceAll(tmpl.Name, "_", " ")
	}

	found, err := p.places.SearchLocations(ctx, baseQuery, params.Locations, params.MaxResults)

	var results []model.SearchResult
	for _, place := range found {
		link := places.MapsURL(place.ID)
		if link == "" {
			continue
		}

		if details, derr := p.places.PlaceDetails(ctx, place.ID); derr == nil {
			contacts[link] = *details
		} else {
			contacts[link] = place
		}

		results = append(results, model.SearchResult{
			Title:       place.DisplayName.Text,
			Snippet:     place.FormattedAddress,
			Link:        link,
			DisplayLink: "google.com",
		})
	}
	return results, err
}

// annotate turns surviving search results into store candidates and
// applies the template's eligibility rules.
func (p *Pipeline) annotate(results []model.SearchResult, tmpl templates.Template, allowed match.Allowed, postTimes map[string]time.Time, placeContacts map[string]places.Place) []model.Candidate {
	var candidates []model.Candidate
	for _, r := range results {
		c := extract.Contact(r.Title, r.Snippet, r.Link)
		c.LeadSource = model.SourceFromURL(r.Link)
		c.LocationMatch = match.MatchesLocation(r, allowed)
		c.IntentMatch = match.IntentMatch(r.Title+" "+r.Snippet, tmpl.IntentPhrases)

		fromPlaces := false
		if place, ok := placeContacts[r.Link]; ok {
			fromPlaces = true
			c.LeadSource = model.SourcePlaces
			if place.WebsiteURI != "" {
				c.WebsiteURL = place.WebsiteURI
			}
			if c.Phone == "" {
				c.Phone = place.Phone
			}
			if c.CompanyName == "" {
				c.CompanyName = place.DisplayName.Text
			}
		} else {
			kw := match.KeywordMatch(r, tmpl.Keywords)
			c.KeywordMatch = &kw
		}

		if t, ok := postTimes[r.Link]; ok {
			posted := t
			c.PostCreatedAt = &posted
		}

		if !eligible(c, tmpl, fromPlaces) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// eligible applies the per-category keep rule: service-provider
// templates need direct contact info, people templates need a relevance
// signal. Places listings carry their relevance in how they were found,
// so only the contact rule applies to them.
func eligible(c model.Candidate, tmpl templates.Template, fromPlaces bool) bool {
	if tmpl.RequiresContact() {
		return c.HasContact()
	}
	if fromPlaces {
		return true
	}
	return c.IntentMatch || (c.KeywordMatch != nil && *c.KeywordMatch)
}
