// Package match implements the location and relevance heuristics applied to
// raw search results.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/homefront-labs/leadscout/internal/model"
)

// Allowed holds the location tokens parsed from the user's location list.
// All entries are lowercase.
type Allowed struct {
	Cities       map[string]bool
	StateAbbrevs map[string]bool
	StateNames   map[string]bool
}

// ParseLocations splits free-form location strings ("Boston MA",
// "Nashua, New Hampshire") into allowed city and state tokens. The last
// token is tried as a state abbreviation, then the trailing tokens as a
// full state name (two-word, then one-word); otherwise every token is
// part of the city name.
func ParseLocations(locations []string) Allowed {
	allowed := Allowed{
		Cities:       make(map[string]bool),
		StateAbbrevs: make(map[string]bool),
		StateNames:   make(map[string]bool),
	}

	for _, loc := range locations {
		cleaned := strings.ToLower(strings.ReplaceAll(loc, ",", " "))
		tokens := strings.Fields(cleaned)
		if len(tokens) == 0 {
			continue
		}

		last := tokens[len(tokens)-1]
		if name, ok := usStates[last]; ok && len(last) == 2 {
			allowed.StateAbbrevs[last] = true
			allowed.StateNames[name] = true
			if city := strings.Join(tokens[:len(tokens)-1], " "); city != "" {
				allowed.Cities[city] = true
			}
			continue
		}

		if len(tokens) >= 2 {
			lastTwo := strings.Join(tokens[len(tokens)-2:], " ")
			if abbrev, ok := stateNameToAbbrev[lastTwo]; ok {
				allowed.StateAbbrevs[abbrev] = true
				allowed.StateNames[lastTwo] = true
				if city := strings.Join(tokens[:len(tokens)-2], " "); city != "" {
					allowed.Cities[city] = true
				}
				continue
			}

			// One-word full state name after the city ("Austin Texas").
			if abbrev, ok := stateNameToAbbrev[last]; ok {
				allowed.StateAbbrevs[abbrev] = true
				allowed.StateNames[last] = true
				allowed.Cities[strings.Join(tokens[:len(tokens)-1], " ")] = true
				continue
			}
		}
		joined := strings.Join(tokens, " ")
		if abbrev, ok := stateNameToAbbrev[joined]; ok {
			// Bare state name ("texas").
			allowed.StateAbbrevs[abbrev] = true
			allowed.StateNames[joined] = true
			continue
		}

		allowed.Cities[joined] = true
	}

	return allowed
}

// MatchesLocation reports whether the result's combined text mentions an
// allowed city, state name, or state abbreviation.
func MatchesLocation(r model.SearchResult, allowed Allowed) bool {
	text := combinedText(r)

	for city := range allowed.Cities {
		if containsPhrase(text, city) {
			return true
		}
	}
	for name := range allowed.StateNames {
		if containsPhrase(text, name) {
			return true
		}
	}
	for abbrev := range allowed.StateAbbrevs {
		if containsPhrase(text, abbrev) {
			return true
		}
	}
	return false
}

// RankByLocation stably sorts results so allowed-location mentions come
// first, then results mentioning no US state at all, then results
// mentioning a different state. Ties keep their original relative order.
func RankByLocation(results []model.SearchResult, allowed Allowed) []model.SearchResult {
	ranked := make([]model.SearchResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		return locationScore(ranked[i], allowed) > locationScore(ranked[j], allowed)
	})
	return ranked
}

// locationScore: 2 = allowed location, 1 = no recognizable state, 0 =
// mentions a different state.
func locationScore(r model.SearchResult, allowed Allowed) int {
	if MatchesLocation(r, allowed) {
		return 2
	}
	if mentionsAnyState(combinedText(r)) {
		return 0
	}
	return 1
}

func mentionsAnyState(text string) bool {
	for abbrev, name := range usStates {
		if containsPhrase(text, name) || containsPhrase(text, abbrev) {
			return true
		}
	}
	return false
}

func combinedText(r model.SearchResult) string {
	return strings.ToLower(r.Title + " " + r.Snippet + " " + r.Link)
}

// containsPhrase reports whether phrase occurs in text with non-letter
// boundaries on both sides, so "ma" does not match inside "information".
// Both arguments must already be lowercase.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start

		before := idx == 0 || !isLetter(text[idx-1])
		end := idx + len(phrase)
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isLetter(b byte) bool {
	return unicode.IsLetter(rune(b))
}
