// Package extract pulls contact details out of search result text with
// regex heuristics. Everything here is best-effort: a miss yields empty
// fields, never an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/homefront-labs/leadscout/internal/model"
)

var (
	// Consumer providers only. Brokerage and vendor addresses are noise
	// for this pipeline, so corporate domains are deliberately excluded.
	emailRe = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@(?:gmail|outlook|hotmail|live|yahoo|icloud|me|aol|comcast|verizon|att)\.(?:com|net)\b`)

	// North American numbers, with or without the country prefix.
	phoneRe    = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	nonDigitRe = regexp.MustCompile(`\D`)

	titleSepRe   = regexp.MustCompile(`[|—\-]+.*$`)
	titleExtraRe = regexp.MustCompile(`\s*[@()]\s*.*$`)
	capWordRe    = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	companyRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:at|with|@)\s+([A-Z][A-Za-z\s&]+(?:Realty|Properties|Homes|Group|Team|Real Estate))`),
		regexp.MustCompile(`([A-Z][A-Za-z\s&]+(?:Realty|Properties|Homes|Group|Team|Real Estate))`),
	}
	spacesRe = regexp.MustCompile(`\s+`)
)

// nameStopwords are business words that look like capitalized names in
// titles but never are.
var nameStopwords = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "corp": {}, "company": {},
	"group": {}, "team": {}, "realty": {}, "properties": {},
	"homes": {}, "realtor": {},
}

// Email returns the first consumer-provider email in text, or "".
func Email(text string) string {
	return emailRe.FindString(text)
}

// Phone returns the first US phone number in text, normalized to
// "(xxx) xxx-xxxx" or "+1 (xxx) xxx-xxxx". Returns "" when nothing
// matches or the digit count is off.
func Phone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(m, "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return ""
}

// Name guesses a first and last name from a result title. Text after a
// separator (pipe, dash, parenthetical) is dropped first, then the
// leading capitalized words that are not business terms are taken.
func Name(title string) (first, last string) {
	title = titleSepRe.ReplaceAllString(title, "")
	title = titleExtraRe.ReplaceAllString(title, "")

	var names []string
	for _, w := range capWordRe.FindAllString(title, -1) {
		if _, stop := nameStopwords[strings.ToLower(w)]; stop {
			continue
		}
		names = append(names, w)
		if len(names) == 2 {
			break
		}
	}

	switch len(names) {
	case 2:
		return names[0], names[1]
	case 1:
		return names[0], ""
	}
	return "", ""
}

// Company looks for a real-estate business name, preferring the
// "at/with Acme Realty" form over a bare match.
func Company(text string) string {
	for _, re := range companyRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		company := spacesRe.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(company) > 3 {
			return company
		}
	}
	return ""
}

// Contact runs every extractor over one search result and returns a
// candidate with the link as its website. Relevance flags and the lead
// source are left for the caller to fill in.
func Contact(title, snippet, link string) model.Candidate {
	combined := title + " " + snippet
	first, last := Name(title)
	return model.Candidate{
		FirstName:   first,
		LastName:    last,
		CompanyName: Company(combined),
		WebsiteURL:  link,
		Email:       Email(combined),
		Phone:       Phone(combined),
	}
}
