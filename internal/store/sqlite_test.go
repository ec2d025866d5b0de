package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homefront-labs/leadscout/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestHashURL(t *testing.T) {
	// Normalization: case and surrounding whitespace never matter.
	a := HashURL("https://Example.com/Agent")
	b := HashURL("  https://example.com/agent  ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	assert.NotEqual(t, a, HashURL("https://example.com/other"))
}

func TestSQLiteStore_AddLeads_New(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	kw := true
	res, err := s.AddLeads(ctx, []model.Candidate{
		{
			FirstName:    "Jane",
			LastName:     "Doe",
			WebsiteURL:   "https://example.com/jane",
			Email:        "jane@gmail.com",
			KeywordMatch: &kw,
			LeadSource:   model.SourceCSE,
		},
		{
			WebsiteURL: "https://reddit.com/r/austin/post1",
			LeadSource: model.SourceReddit,
		},
	}, "buyer_leads", []string{"Austin, TX"})
	require.NoError(t, err)

	assert.Len(t, res.NewLeads, 2)
	assert.Empty(t, res.DuplicateLeads)
	assert.Zero(t, res.Failed)

	lead := res.NewLeads[0]
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, HashURL("https://example.com/jane"), lead.URLHash)
	assert.Equal(t, "buyer_leads", lead.Template)
	assert.Equal(t, "Austin, TX", lead.Locations)
	assert.Equal(t, 1, lead.TimesSeen)
}

func TestSQLiteStore_AddLeads_SkipsEmptyURL(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	res, err := s.AddLeads(ctx, []model.Candidate{
		{FirstName: "Ghost"},
		{WebsiteURL: "   "},
		{WebsiteURL: "https://example.com/real"},
	}, "buyer_leads", nil)
	require.NoError(t, err)

	assert.Len(t, res.NewLeads, 1)
	assert.Empty(t, res.DuplicateLeads)
	assert.Zero(t, res.Failed)

	// Batch size counts everything handed in, including the skipped ones.
	hist, err := s.GetSearchHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 3, hist[0].NumResults)
	assert.Equal(t, 1, hist[0].NewLeads)
	assert.Equal(t, 0, hist[0].DuplicateLeads)
}

func TestSQLiteStore_AddLeads_DuplicateMerges(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{
			FirstName:  "Jane",
			WebsiteURL: "https://example.com/jane",
			Email:      "jane@gmail.com",
		},
	}, "buyer_leads", []string{"Austin, TX"})
	require.NoError(t, err)

	before, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, before, 1)

	// Same URL modulo case, more detail this time, but an empty email
	// that must not clobber the stored one.
	res, err := s.AddLeads(ctx, []model.Candidate{
		{
			FirstName:  "Janet",
			LastName:   "Doe",
			Phone:      "(512) 555-0147",
			WebsiteURL: "https://EXAMPLE.com/jane",
		},
	}, "buyer_leads", []string{"Austin, TX"})
	require.NoError(t, err)

	assert.Empty(t, res.NewLeads)
	assert.Len(t, res.DuplicateLeads, 1)

	after, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, after, 1)

	got := after[0]
	assert.Equal(t, 2, got.TimesSeen)
	assert.Equal(t, "jane@gmail.com", got.Email, "stored email survives empty update")
	assert.Equal(t, "Jane", got.FirstName, "stored name survives")
	assert.Equal(t, "Doe", got.LastName, "gap filled")
	assert.Equal(t, "(512) 555-0147", got.Phone, "gap filled")
	assert.Equal(t, before[0].CreatedAt, got.CreatedAt, "created_at immutable")
	assert.False(t, got.LastSeen.Before(before[0].LastSeen))
}

func TestSQLiteStore_AddLeads_KeywordBackfill(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a"},
	}, "buyer_leads", nil)
	require.NoError(t, err)

	kw := true
	_, err = s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a", KeywordMatch: &kw},
	}, "buyer_leads", nil)
	require.NoError(t, err)

	leads, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].KeywordMatch)
	assert.True(t, *leads[0].KeywordMatch)
}

func TestSQLiteStore_GetAllLeads_Filter(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a"},
		{WebsiteURL: "https://example.com/b"},
	}, "buyer_leads", nil)
	require.NoError(t, err)
	_, err = s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/c"},
	}, "seller_leads", nil)
	require.NoError(t, err)

	all, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	buyers, err := s.GetAllLeads(ctx, LeadFilter{Template: "buyer_leads"})
	require.NoError(t, err)
	assert.Len(t, buyers, 2)

	limited, err := s.GetAllLeads(ctx, LeadFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_RoundTripNullables(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	posted := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	kw := false
	_, err := s.AddLeads(ctx, []model.Candidate{
		{
			WebsiteURL:    "https://reddit.com/r/austin/p",
			LeadSource:    model.SourceReddit,
			KeywordMatch:  &kw,
			PostCreatedAt: &posted,
			IntentMatch:   true,
			LocationMatch: true,
		},
		{WebsiteURL: "https://example.com/plain"},
	}, "buyer_leads", nil)
	require.NoError(t, err)

	leads, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 2)

	byURL := map[string]model.Lead{}
	for _, l := range leads {
		byURL[l.WebsiteURL] = l
	}

	r := byURL["https://reddit.com/r/austin/p"]
	assert.Equal(t, model.SourceReddit, r.LeadSource)
	require.NotNil(t, r.KeywordMatch)
	assert.False(t, *r.KeywordMatch)
	require.NotNil(t, r.PostCreatedAt)
	assert.True(t, posted.Equal(*r.PostCreatedAt))
	assert.True(t, r.IntentMatch)
	assert.True(t, r.LocationMatch)

	p := byURL["https://example.com/plain"]
	assert.Nil(t, p.KeywordMatch)
	assert.Nil(t, p.PostCreatedAt)
}

func TestSQLiteStore_DeleteLeads(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	res, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a"},
		{WebsiteURL: "https://example.com/b"},
	}, "buyer_leads", nil)
	require.NoError(t, err)
	require.Len(t, res.NewLeads, 2)

	n, err := s.DeleteLeads(ctx, []string{res.NewLeads[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteLeads(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestSQLiteStore_TimestampsSQLiteReadable(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/now", LeadSource: model.SourceCSE},
	}, "buyer_leads", []string{"Austin, TX"})
	require.NoError(t, err)

	// DATE() returns NULL when it cannot parse the stored value, which
	// would silently break the new-today counter.
	var day string
	err = s.db.QueryRowContext(ctx,
		`SELECT DATE(created_at) FROM leads`).Scan(&day)
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), day)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NewToday)
}

func TestSQLiteStore_Stats(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a", Email: "a@gmail.com"},
		{WebsiteURL: "https://example.com/b", Phone: "(512) 555-0147"},
		{WebsiteURL: "https://example.com/c"},
	}, "buyer_leads", nil)
	require.NoError(t, err)
	_, err = s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/d"},
	}, "buyer_leads", nil)
	require.NoError(t, err)
	_, err = s.AddLeads(ctx, nil, "seller_leads", nil)
	require.NoError(t, err)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 1, stats.LeadsWithEmail)
	assert.Equal(t, 1, stats.LeadsWithPhone)
	assert.Equal(t, 4, stats.NewToday)
	assert.Equal(t, 3, stats.TotalSearches)
	assert.Equal(t, "buyer_leads", stats.MostUsedTemplate)
}

func TestSQLiteStore_ClearAll(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.AddLeads(ctx, []model.Candidate{
		{WebsiteURL: "https://example.com/a"},
	}, "buyer_leads", nil)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	leads, err := s.GetAllLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Empty(t, leads)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLeads)
	assert.Zero(t, stats.TotalSearches)
}
