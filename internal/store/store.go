// Package store persists leads and search history behind a single
// interface with SQLite and Postgres implementations. Deduplication by
// normalized URL hash is the store's core job: the same URL seen twice
// merges into one row instead of inserting a second.
package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/homefront-labs/leadscout/internal/model"
)

// LeadFilter narrows GetAllLeads.
type LeadFilter struct {
	Template string `json:"template,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// AddResult reports what happened to one ingestion batch. A candidate
// lands in exactly one bucket; ones with no URL are skipped entirely.
type AddResult struct {
	NewLeads       []model.Lead      `json:"new_leads"`
	DuplicateLeads []model.Candidate `json:"duplicate_leads"`
	Failed         int               `json:"failed"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Leads
	AddLeads(ctx context.Context, candidates []model.Candidate, template string, locations []string) (*AddResult, error)
	GetAllLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	DeleteLeads(ctx context.Context, ids []string) (int, error)

	// History and stats
	GetSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryEntry, error)
	GetStats(ctx context.Context) (*model.Stats, error)

	// Lifecycle
	ClearAll(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// HashURL produces the dedup key for a URL: hex md5 of the lowercased,
// trimmed string. Existing rows were written with this exact
// normalization, so it must never change.
func HashURL(url string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(url))))
	return hex.EncodeToString(sum[:])
}
