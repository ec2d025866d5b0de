package model

import (
	"net/url"
	"strings"
)

// LeadSource identifies which kind of site a lead's URL points at.
type LeadSource string

// Known lead sources. SourceCSE is the catch-all for ordinary web results.
const (
	SourceCSE        LeadSource = "cse"
	SourcePlaces     LeadSource = "places"
	SourceReddit     LeadSource = "reddit"
	SourceFacebook   LeadSource = "facebook"
	SourceInstagram  LeadSource = "instagram"
	SourceLinkedIn   LeadSource = "linkedin"
	SourceNextdoor   LeadSource = "nextdoor"
	SourceTikTok     LeadSource = "tiktok"
	SourceYouTube    LeadSource = "youtube"
	SourcePinterest  LeadSource = "pinterest"
	SourceCraigslist LeadSource = "craigslist"
)

var sourceDomains = map[string]LeadSource{
	"reddit.com":     SourceReddit,
	"facebook.com":   SourceFacebook,
	"instagram.com":  SourceInstagram,
	"linkedin.com":   SourceLinkedIn,
	"nextdoor.com":   SourceNextdoor,
	"tiktok.com":     SourceTikTok,
	"youtube.com":    SourceYouTube,
	"pinterest.com":  SourcePinterest,
	"craigslist.org": SourceCraigslist,
}

// SourceFromURL derives the LeadSource from a result link's host.
// Google Maps place links map to SourcePlaces; unrecognized hosts map to
// SourceCSE.
func SourceFromURL(rawURL string) LeadSource {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return SourceCSE
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	if host == "google.com" && strings.HasPrefix(parsed.Path, "/maps") {
		return SourcePlaces
	}

	for domain, src := range sourceDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return src
		}
	}
	return SourceCSE
}
