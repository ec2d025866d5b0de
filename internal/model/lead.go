// Package model defines the core data types shared across the lead pipeline.
package model

import "time"

// SearchResult is a single raw hit from a search collaborator (Custom
// Search or a normalized Places item). Consumed once per pipeline run.
type SearchResult struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

// Candidate is an in-flight extraction result from one search hit. It is
// not yet persisted; the store turns it into a Lead (or merges it into an
// existing one).
type Candidate struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	WebsiteURL  string `json:"website_url"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`

	LocationMatch bool       `json:"location_match"`
	IntentMatch   bool       `json:"intent_match"`
	KeywordMatch  *bool      `json:"keyword_match,omitempty"` // nil = unknown
	LeadSource    LeadSource `json:"lead_source"`
	PostCreatedAt *time.Time `json:"post_created_at,omitempty"`
}

// HasContact reports whether the candidate carries any direct contact info.
func (c Candidate) HasContact() bool {
	return c.Email != "" || c.Phone != ""
}

// Lead is a persisted candidate record, uniquely identified by the
// normalized URL hash. Scores are derived at read time and never stored.
type Lead struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	WebsiteURL  string `json:"website_url"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`

	LocationMatch bool       `json:"location_match"`
	IntentMatch   bool       `json:"intent_match"`
	KeywordMatch  *bool      `json:"keyword_match,omitempty"`
	LeadSource    LeadSource `json:"lead_source"`
	PostCreatedAt *time.Time `json:"post_created_at,omitempty"`

	URLHash   string    `json:"url_hash"`
	Template  string    `json:"template"`
	Locations string    `json:"locations"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	TimesSeen int       `json:"times_seen"`
}

// SearchHistoryEntry is the append-only audit record written once per
// ingestion batch.
type SearchHistoryEntry struct {
	ID             string    `json:"id"`
	Template       string    `json:"template"`
	Locations      string    `json:"locations"`
	NumResults     int       `json:"num_results"`
	NewLeads       int       `json:"new_leads"`
	DuplicateLeads int       `json:"duplicate_leads"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stats holds aggregate store counters.
type Stats struct {
	TotalLeads       int    `json:"total_leads"`
	LeadsWithEmail   int    `json:"leads_with_email"`
	LeadsWithPhone   int    `json:"leads_with_phone"`
	NewToday         int    `json:"new_today"`
	TotalSearches    int    `json:"total_searches"`
	MostUsedTemplate string `json:"most_used_template"`
}
