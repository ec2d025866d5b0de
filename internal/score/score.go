// Package score computes lead quality scores. Scores are derived fresh on
// every read because the recency component depends on the wall clock.
package score

import (
	"time"

	"github.com/homefront-labs/leadscout/internal/model"
)

// unknownRecencyDays stands in for a reddit post whose creation time was
// never resolved: old enough to miss every recency bonus.
const unknownRecencyDays = 9999

const goodLeadMaxAgeDays = 60

// Input carries the fields the scoring model reads. Build one from a Lead
// with FromLead, or directly from a Candidate plus its insertion time.
type Input struct {
	LocationMatch bool
	IntentMatch   bool
	KeywordMatch  *bool // nil = unknown
	Email         string
	Phone         string
	WebsiteURL    string
	LeadSource    model.LeadSource
	PostCreatedAt *time.Time
	CreatedAt     time.Time
}

// FromLead adapts a stored lead for scoring.
func FromLead(l model.Lead) Input {
	return Input{
		LocationMatch: l.LocationMatch,
		IntentMatch:   l.IntentMatch,
		KeywordMatch:  l.KeywordMatch,
		Email:         l.Email,
		Phone:         l.Phone,
		WebsiteURL:    l.WebsiteURL,
		LeadSource:    l.LeadSource,
		PostCreatedAt: l.PostCreatedAt,
		CreatedAt:     l.CreatedAt,
	}
}

// Result is the derived scoring output.
type Result struct {
	Score        int  `json:"lead_score"`
	ContactScore int  `json:"contact_score"`
	GoodLead     bool `json:"good_lead"`
}

// Score applies the additive model. Pure and reproducible: identical
// inputs and the same now always produce the same result.
func Score(in Input, now time.Time) Result {
	s := 0

	if in.LocationMatch {
		s += 35
	}
	if in.IntentMatch {
		s += 30
	}

	days := recencyDays(in, now)
	s += recencyBonus(days)

	contact := 0
	if in.Email != "" {
		contact += 7
	}
	if in.Phone != "" {
		contact += 7
	}
	if in.WebsiteURL != "" {
		contact += 6
	}
	s += contact

	keywordHit := in.KeywordMatch != nil && *in.KeywordMatch
	if in.KeywordMatch != nil {
		if *in.KeywordMatch {
			s += 8
		} else {
			s -= 5
		}
	}

	// Soft demotion for web results with no relevance signal at all.
	if in.LeadSource != model.SourceReddit && in.LeadSource != model.SourcePlaces &&
		!in.IntentMatch && !keywordHit {
		s -= 12
	}

	s += sourceBonus(in.LeadSource)

	good := in.IntentMatch && in.LocationMatch && days <= goodLeadMaxAgeDays
	if good {
		s += 10
	}

	if !in.IntentMatch && s > 60 {
		s = 60
	}
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}

	return Result{Score: s, ContactScore: contact, GoodLead: good}
}

// recencyDays returns whole days since the authoritative timestamp: the
// resolved post time when known, otherwise record creation. A reddit lead
// with no resolved post time counts as maximally stale.
func recencyDays(in Input, now time.Time) int {
	switch {
	case in.PostCreatedAt != nil && !in.PostCreatedAt.IsZero():
		return int(now.Sub(*in.PostCreatedAt).Hours() / 24)
	case in.LeadSource == model.SourceReddit:
		return unknownRecencyDays
	case in.CreatedAt.IsZero():
		return unknownRecencyDays
	default:
		return int(now.Sub(in.CreatedAt).Hours() / 24)
	}
}

func recencyBonus(days int) int {
	switch {
	case days <= 7:
		return 20
	case days <= 30:
		return 15
	case days <= 60:
		return 10
	case days <= 90:
		return 5
	default:
		return 0
	}
}

func sourceBonus(src model.LeadSource) int {
	switch src {
	case model.SourcePlaces:
		return 8
	case model.SourceLinkedIn:
		return 5
	case model.SourceFacebook:
		return 4
	case model.SourceInstagram:
		return 3
	case model.SourceReddit:
		return 2
	default:
		return 3
	}
}
