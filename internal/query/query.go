// Package query composes boolean search-engine query strings from
// template facets.
package query

import (
	"fmt"
	"strings"
)

const redditDomain = "reddit.com"

// Params are the ordered facets of one query. Empty facets are omitted.
type Params struct {
	Keywords         []string
	Locations        []string
	Sites            []string
	EmailDomains     []string
	ExcludeTerms     []string
	IntentPhrases    []string
	RedditSubreddits []string
}

// Build renders the facets into a Custom Search query string. Each facet
// becomes a parenthesized OR-group of quoted literals; groups are joined
// with spaces (implicit AND). Exclusions trail the groups as -term tokens.
// Output is deterministic for identical ordered inputs.
func Build(p Params) string {
	var groups []string

	if g := siteGroup(p.Sites, p.RedditSubreddits); g != "" {
		groups = append(groups, g)
	}
	if g := quotedGroup(p.Keywords); g != "" {
		groups = append(groups, g)
	}
	if g := quotedGroup(p.IntentPhrases); g != "" {
		groups = append(groups, g)
	}
	if g := quotedGroup(p.EmailDomains); g != "" {
		groups = append(groups, g)
	}
	if g := quotedGroup(p.Locations); g != "" {
		groups = append(groups, g)
	}

	q := strings.Join(groups, " ")

	if len(p.ExcludeTerms) > 0 {
		exclusions := make([]string, len(p.ExcludeTerms))
		for i, term := range p.ExcludeTerms {
			exclusions[i] = "-" + term
		}
		q = strings.TrimSpace(q + " " + strings.Join(exclusions, " "))
	}

	return strings.TrimSpace(q)
}

// quotedGroup renders values as ("a" OR "b").
func quotedGroup(values []string) string {
	if len(values) == 0 {
		return ""
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

// siteGroup renders site: restrictions. The reddit domain expands to
// per-subreddit restrictions when hints are supplied, instead of searching
// the whole domain.
func siteGroup(sites, subreddits []string) string {
	if len(sites) == 0 {
		return ""
	}
	var parts []string
	for _, site := range sites {
		if site == redditDomain && len(subreddits) > 0 {
			for _, sub := range subreddits {
				parts = append(parts, fmt.Sprintf("site:%s/r/%s", redditDomain, sub))
			}
			continue
		}
		parts = append(parts, "site:"+site)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
