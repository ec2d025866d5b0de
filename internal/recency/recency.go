// Package recency drops stale forum posts by resolving their true
// creation time.
package recency

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/homefront-labs/leadscout/internal/model"
	"github.com/homefront-labs/leadscout/pkg/reddit"
)

// Filter checks reddit results against a maximum post age. Lookups run in
// a small bounded pool behind a per-host politeness limiter.
type Filter struct {
	client  reddit.Client
	limiter *rate.Limiter
	workers int
	now     func() time.Time
}

// Option configures the filter.
type Option func(*Filter)

// WithWorkers sets the lookup pool size.
func WithWorkers(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithRateLimit sets the lookup requests-per-second ceiling.
func WithRateLimit(rps float64) Option {
	return func(f *Filter) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		f.now = now
	}
}

// NewFilter creates a recency filter over the given reddit client.
func NewFilter(client reddit.Client, opts ...Option) *Filter {
	f := &Filter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		workers: 4,
		now:     time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Apply returns the results that survive the age check plus a map of
// resolved post creation times keyed by link. Non-reddit results always
// pass through. Reddit results whose creation time cannot be resolved are
// dropped (unverifiable age disqualifies), as are posts older than
// maxAgeDays. Output preserves input order.
func (f *Filter) Apply(ctx context.Context, results []model.SearchResult, maxAgeDays int) ([]model.SearchResult, map[string]time.Time) {
	type outcome struct {
		keep    bool
		created time.Time
		hasTime bool
	}
	outcomes := make([]outcome, len(results))

	cutoff := f.now().AddDate(0, 0, -maxAgeDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, r := range results {
		if model.SourceFromURL(r.Link) != model.SourceReddit {
			outcomes[i] = outcome{keep: true}
			continue
		}

		i, r := i, r
		g.Go(func() error {
			if err := f.limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr // cancelled lookups just drop the item
			}

			created, err := f.client.PostCreatedAt(gctx, r.Link)
			if err != nil {
				zap.L().Debug("recency: lookup failed, dropping result",
					zap.String("link", r.Link),
					zap.Error(err),
				)
				return nil
			}

			if created.Before(cutoff) {
				zap.L().Debug("recency: post too old",
					zap.String("link", r.Link),
					zap.Time("created", created),
				)
				return nil
			}

			outcomes[i] = outcome{keep: true, created: created, hasTime: true}
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]model.SearchResult, 0, len(results))
	origins := make(map[string]time.Time)
	for i, r := range results {
		if !outcomes[i].keep {
			continue
		}
		kept = append(kept, r)
		if outcomes[i].hasTime {
			origins[r.Link] = outcomes[i].created
		}
	}
	return kept, origins
}
