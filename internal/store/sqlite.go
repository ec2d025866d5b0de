package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/homefront-labs/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB

	// Serializes ingestion batches. SQLite allows one writer at a time
	// and the check-then-insert in AddLeads must not interleave.
	mu sync.Mutex
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	// Without _time_format the driver binds time.Time in Go's default
	// String form, which SQLite's date functions cannot parse.
	if strings.Contains(dsn, "?") {
		dsn += "&_time_format=sqlite"
	} else {
		dsn += "?_time_format=sqlite"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	company_name    TEXT NOT NULL DEFAULT '',
	website_url     TEXT NOT NULL,
	email           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	location_match  INTEGER NOT NULL DEFAULT 0,
	intent_match    INTEGER NOT NULL DEFAULT 0,
	keyword_match   INTEGER,
	lead_source     TEXT NOT NULL DEFAULT 'cse',
	post_created_at DATETIME,
	url_hash        TEXT NOT NULL UNIQUE,
	template        TEXT NOT NULL DEFAULT '',
	locations       TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	last_seen       DATETIME NOT NULL DEFAULT (datetime('now')),
	times_seen      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS search_history (
	id              TEXT PRIMARY KEY,
	template        TEXT NOT NULL DEFAULT '',
	locations       TEXT NOT NULL DEFAULT '',
	num_results     INTEGER NOT NULL DEFAULT 0,
	new_leads       INTEGER NOT NULL DEFAULT 0,
	duplicate_leads INTEGER NOT NULL DEFAULT 0,
	timestamp       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_url_hash ON leads(url_hash);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_template ON leads(template);
CREATE INDEX IF NOT EXISTS idx_search_history_timestamp ON search_history(timestamp);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddLeads(ctx context.Context, candidates []model.Candidate, template string, locations []string) (*AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

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
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM leads WHERE url_hash = ?`, hash,
		).Scan(&existingID)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			lead, err := insertLeadSQLite(ctx, tx, c, hash, template, locationStr, now)
			if err != nil {
				res.Failed++
				errs = append(errs, err)
				continue
			}
			res.NewLeads = append(res.NewLeads, *lead)

		case err != nil:
			res.Failed++
			errs = append(errs, eris.Wrapf(err, "sqlite: lookup lead %s", hash))

		default:
			if err := mergeLeadSQLite(ctx, tx, c, existingID, now); err != nil {
				res.Failed++
				errs = append(errs, err)
				continue
			}
			res.DuplicateLeads = append(res.DuplicateLeads, c)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO search_history (id, template, locations, num_results, new_leads, duplicate_leads, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), template, locationStr,
		len(candidates), len(res.NewLeads), len(res.DuplicateLeads), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert search history")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return res, errors.Join(errs...)
}

func insertLeadSQLite(ctx context.Context, tx *sql.Tx, c model.Candidate, hash, template, locationStr string, now time.Time) (*model.Lead, error) {
	id := uuid.New().String()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO leads (
			id, first_name, last_name, company_name, website_url, email, phone,
			location_match, intent_match, keyword_match, lead_source, post_created_at,
			url_hash, template, locations, created_at, last_seen, times_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		id, c.FirstName, c.LastName, c.CompanyName, c.WebsiteURL, c.Email, c.Phone,
		c.LocationMatch, c.IntentMatch, nullableBool(c.KeywordMatch),
		string(c.LeadSource), nullableTime(c.PostCreatedAt),
		hash, template, locationStr, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert lead %s", hash)
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

// mergeLeadSQLite folds a re-seen candidate into its existing row.
// Stored non-empty fields win; only gaps get filled. created_at is
// never touched.
func mergeLeadSQLite(ctx context.Context, tx *sql.Tx, c model.Candidate, id string, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE leads SET
			last_seen       = ?,
			times_seen      = times_seen + 1,
			email           = COALESCE(NULLIF(?, ''), email),
			phone           = COALESCE(NULLIF(?, ''), phone),
			first_name      = COALESCE(NULLIF(?, ''), first_name),
			last_name       = COALESCE(NULLIF(?, ''), last_name),
			company_name    = COALESCE(NULLIF(?, ''), company_name),
			keyword_match   = COALESCE(keyword_match, ?),
			post_created_at = COALESCE(post_created_at, ?)
		 WHERE id = ?`,
		now, c.Email, c.Phone, c.FirstName, c.LastName, c.CompanyName,
		nullableBool(c.KeywordMatch), nullableTime(c.PostCreatedAt), id,
	)
	return eris.Wrapf(err, "sqlite: merge lead %s", id)
}

const sqliteLeadColumns = `id, first_name, last_name, company_name, website_url, email, phone,
	location_match, intent_match, keyword_match, lead_source, post_created_at,
	url_hash, template, locations, created_at, last_seen, times_seen`

func (s *SQLiteStore) GetAllLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + sqliteLeadColumns + ` FROM leads`
	var args []any

	if filter.Template != "" {
		query += ` WHERE template = ?`
		args = append(args, filter.Template)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: get leads iterate")
}

func (s *SQLiteStore) DeleteLeads(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM leads WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete leads")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) GetSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, locations, num_results, new_leads, duplicate_leads, timestamp
		 FROM search_history ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get search history")
	}
	defer rows.Close()

	var entries []model.SearchHistoryEntry
	for rows.Next() {
		var e model.SearchHistoryEntry
		if err := rows.Scan(&e.ID, &e.Template, &e.Locations,
			&e.NumResults, &e.NewLeads, &e.DuplicateLeads, &e.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: get search history iterate")
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM leads`, &stats.TotalLeads},
		{`SELECT COUNT(*) FROM leads WHERE email != ''`, &stats.LeadsWithEmail},
		{`SELECT COUNT(*) FROM leads WHERE phone != ''`, &stats.LeadsWithPhone},
		{`SELECT COUNT(*) FROM leads WHERE DATE(created_at, 'localtime') = DATE('now', 'localtime')`, &stats.NewToday},
		{`SELECT COUNT(*) FROM search_history`, &stats.TotalSearches},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, eris.Wrap(err, "sqlite: get stats")
		}
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT template FROM search_history
		 GROUP BY template ORDER BY COUNT(*) DESC LIMIT 1`,
	).Scan(&stats.MostUsedTemplate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(err, "sqlite: get most used template")
	}

	return &stats, nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM leads`,
		`DELETE FROM search_history`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrapf(err, "sqlite: exec %s", stmt)
		}
	}
	return nil
}

// helpers

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var source string
	var keyword sql.NullBool
	var postCreated sql.NullTime

	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.CompanyName, &l.WebsiteURL, &l.Email, &l.Phone,
		&l.LocationMatch, &l.IntentMatch, &keyword, &source, &postCreated,
		&l.URLHash, &l.Template, &l.Locations, &l.CreatedAt, &l.LastSeen, &l.TimesSeen,
	)
	if err != nil {
		return nil, eris.Wrap(err, "scan lead")
	}

	l.LeadSource = model.LeadSource(source)
	if keyword.Valid {
		l.KeywordMatch = &keyword.Bool
	}
	if postCreated.Valid {
		t := postCreated.Time
		l.PostCreatedAt = &t
	}
	return &l, nil
}
