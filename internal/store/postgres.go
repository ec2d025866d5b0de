package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/homefront-labs/leadscout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
	mu   sync.Mutex
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	company_name    TEXT NOT NULL DEFAULT '',
	website_url     TEXT NOT NULL,
	email           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	location_match  BOOLEAN NOT NULL DEFAULT false,
	intent_match    BOOLEAN NOT NULL DEFAULT false,
	keyword_match   BOOLEAN,
	lead_source     TEXT NOT NULL DEFAULT 'cse',
	post_created_at TIMESTAMPTZ,
	url_hash        TEXT NOT NULL UNIQUE,
	template        TEXT NOT NULL DEFAULT '',
	locations       TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen       TIMESTAMPTZ NOT NULL DEFAULT now(),
	times_seen      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS search_history (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	template        TEXT NOT NULL DEFAULT '',
	locations       TEXT NOT NULL DEFAULT '',
	num_results     INTEGER NOT NULL DEFAULT 0,
	new_leads       INTEGER NOT NULL DEFAULT 0,
	duplicate_leads INTEGER NOT NULL DEFAULT 0,
	timestamp       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_url_hash ON leads(url_hash);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_template ON leads(template);
CREATE INDEX IF NOT EXISTS idx_search_history_timestamp ON search_history(timestamp);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AddLeads(ctx context.Context, candidates []model.Candidate, template string, locations []string) (*AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &AddResult{}
	locationStr := strings.Join(locations, ", ")
	now := time.Now().UTC()
	var errs []error

	for _, c := range candidates {
		if strings.TrimSpace(c.WebsiteURL) == "" {
			continue
		}
		hash := HashURL(c.WebsiteURL)

		var existingID string
		err := s.pool.QueryRow(ctx,
			`SELECT id FROM leads WHERE url_hash = $1`, hash,
		).Scan(&existingID)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			lead, err := s.insertLead(ctx, c, hash, template, locationStr, now)
			if err != nil {
				res.Failed++
				errs = append(errs, err)
				continue
			}
			res.NewLeads = append(res.NewLeads, *lead)

		case err != nil:
			res.Failed++
			errs = append(errs, eris.Wrapf(err, "postgres: lookup lead %s", hash))

		default:
			if err := s.mergeLead(ctx, c, existingID, now); err != nil {
				res.Failed++
				errs = append(errs, err)
				continue
			}
			res.DuplicateLeads = append(res.DuplicateLeads, c)
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_history (id, template, locations, num_results, new_leads, duplicate_leads, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), template, locationStr,
		len(candidates), len(res.NewLeads), len(res.DuplicateLeads), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert search history")
	}

	return res, errors.Join(errs...)
}

func (s *PostgresStore) insertLead(ctx context.Context, c model.Candidate, hash, template, locationStr string, now time.Time) (*model.Lead, error) {
	id := uuid.New().String()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (
			id, first_name, last_name, company_name, website_url, email, phone,
			location_match, intent_match, keyword_match, lead_source, post_created_at,
			url_hash, template, locations, created_at, last_seen, times_seen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1)`,
		id, c.FirstName, c.LastName, c.CompanyName, c.WebsiteURL, c.Email, c.Phone,
		c.LocationMatch, c.IntentMatch, c.KeywordMatch, string(c.LeadSource), c.PostCreatedAt,
		hash, template, locationStr, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert lead %s", hash)
	}

	return &model.Lead{
		ID:            id,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		CompanyName:   c.CompanyName,
		WebsiteURL:    c.WebsiteURL,
		Email:         c.Email,
		Phone:         c.Phone,
		LocationMatch: c.LocationMatch,
		IntentMatch:   c.IntentMatch,
		KeywordMatch:  c.KeywordMatch,
		LeadSource:    c.LeadSource,
		PostCreatedAt: c.PostCreatedAt,
		URLHash:       hash,
		Template:      template,
		Locations:     locationStr,
		CreatedAt:     now,
		LastSeen:      now,
		TimesSeen:     1,
	}, nil
}

func (s *PostgresStore) mergeLead(ctx context.Context, c model.Candidate, id string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET
			last_seen       = $1,
			times_seen      = times_seen + 1,
			email           = COALESCE(NULLIF($2, ''), email),
			phone           = COALESCE(NULLIF($3, ''), phone),
			first_name      = COALESCE(NULLIF($4, ''), first_name),
			last_name       = COALESCE(NULLIF($5, ''), last_name),
			company_name    = COALESCE(NULLIF($6, ''), company_name),
			keyword_match   = COALESCE(keyword_match, $7),
			post_created_at = COALESCE(post_created_at, $8)
		 WHERE id = $9`,
		now, c.Email, c.Phone, c.FirstName, c.LastName, c.CompanyName,
		c.KeywordMatch, c.PostCreatedAt, id,
	)
	return eris.Wrapf(err, "postgres: merge lead %s", id)
}

const postgresLeadColumns = `id, first_name, last_name, company_name, website_url, email, phone,
	location_match, intent_match, keyword_match, lead_source, post_created_at,
	url_hash, template, locations, created_at, last_seen, times_seen`

func (s *PostgresStore) GetAllLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + postgresLeadColumns + ` FROM leads`
	args := []any{}
	argIdx := 1

	if filter.Template != "" {
		query += fmt.Sprintf(` WHERE template = $%d`, argIdx)
		args = append(args, filter.Template)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanPgLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: get leads iterate")
}

func (s *PostgresStore) DeleteLeads(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM leads WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete leads")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) GetSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, template, locations, num_results, new_leads, duplicate_leads, timestamp
		 FROM search_history ORDER BY timestamp DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get search history")
	}
	defer rows.Close()

	var entries []model.SearchHistoryEntry
	for rows.Next() {
		var e model.SearchHistoryEntry
		if err := rows.Scan(&e.ID, &e.Template, &e.Locations,
			&e.NumResults, &e.NewLeads, &e.DuplicateLeads, &e.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan history entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: get search history iterate")
}

func (s *PostgresStore) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM leads`, &stats.TotalLeads},
		{`SELECT COUNT(*) FROM leads WHERE email != ''`, &stats.LeadsWithEmail},
		{`SELECT COUNT(*) FROM leads WHERE phone != ''`, &stats.LeadsWithPhone},
		{`SELECT COUNT(*) FROM leads WHERE created_at::date = now()::date`, &stats.NewToday},
		{`SELECT COUNT(*) FROM search_history`, &stats.TotalSearches},
	}
	for _, c := range counts {
		if err := s.pool.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, eris.Wrap(err, "postgres: get stats")
		}
	}

	err := s.pool.QueryRow(ctx,
		`SELECT template FROM search_history
		 GROUP BY template ORDER BY COUNT(*) DESC LIMIT 1`,
	).Scan(&stats.MostUsedTemplate)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(err, "postgres: get most used template")
	}

	return &stats, nil
}

func (s *PostgresStore) ClearAll(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM leads`,
		`DELETE FROM search_history`,
	} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "postgres: exec %s", stmt)
		}
	}
	return nil
}

func scanPgLead(rows pgx.Rows) (*model.Lead, error) {
	var l model.Lead
	var source string
	var keyword *bool
	var postCreated *time.Time

	err := rows.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.CompanyName, &l.WebsiteURL, &l.Email, &l.Phone,
		&l.LocationMatch, &l.IntentMatch, &keyword, &source, &postCreated,
		&l.URLHash, &l.Template, &l.Locations, &l.CreatedAt, &l.LastSeen, &l.TimesSeen,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan lead")
	}

	l.LeadSource = model.LeadSource(source)
	l.KeywordMatch = keyword
	l.PostCreatedAt = postCreated
	return &l, nil
}
