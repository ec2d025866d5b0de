package match

import (
	"strings"

	"github.com/homefront-labs/leadscout/internal/model"
)

// KeywordMatch reports whether the result's combined text contains any of
// the template keywords. An empty keyword list matches vacuously.
func KeywordMatch(r model.SearchResult, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	text := combinedText(r)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IntentMatch reports whether text contains any intent phrase. Matching is
// case-insensitive plain containment: intent phrases are multi-word, so no
// word-boundary check is needed (deliberately looser than location matching).
func IntentMatch(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// StrictFilter keeps results matching a keyword or an intent phrase.
// Places results carry no title/snippet text worth matching, so callers
// must not route them through this filter.
func StrictFilter(results []model.SearchResult, keywords, phrases []string) []model.SearchResult {
	kept := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if KeywordMatch(r, keywords) || IntentMatch(r.Title+" "+r.Snippet, phrases) {
			kept = append(kept, r)
		}
	}
	return kept
}
