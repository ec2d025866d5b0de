package main

import (
	"context"

	"github.com/homefront-labs/leadscout/internal/pipeline"
	"github.com/homefront-labs/leadscout/internal/recency"
	"github.com/homefront-labs/leadscout/internal/store"
	"github.com/homefront-labs/leadscout/pkg/cse"
	"github.com/homefront-labs/leadscout/pkg/places"
	"github.com/homefront-labs/leadscout/pkg/reddit"
)

// pipelineEnv holds the initialized store, clients, and pipeline used by
// the search and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store and all API clients and builds the
// Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := loadTemplates()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	searchClient := cse.NewClient(cfg.Google.APIKey, cfg.Google.CSEID,
		cse.WithRateLimit(cfg.Search.RateLimitRPS))

	placesKey := cfg.Google.PlacesAPIKey
	if placesKey == "" {
		placesKey = cfg.Google.APIKey
	}
	placesClient := places.NewClient(placesKey,
		places.WithRadiusMiles(cfg.Search.PlacesRadius),
		places.WithRateLimit(cfg.Search.RateLimitRPS))

	redditClient := reddit.NewClient(reddit.WithUserAgent(cfg.Reddit.UserAgent))
	recencyFilter := recency.NewFilter(redditClient,
		recency.WithWorkers(cfg.Reddit.Workers),
		recency.WithRateLimit(cfg.Reddit.RateLimitRPS))

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(searchClient, placesClient, recencyFilter, st, reg),
	}, nil
}
