// Package templates holds the built-in search template registry and
// optional custom template loading.
package templates

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Template categories.
const (
	CategoryServiceProviders = "Service Providers"
	CategoryHomeBuyers       = "Home Buyers"
	CategoryHomeSellers      = "Home Sellers"
	CategoryHomeImprovement  = "Home Improvement"
	CategoryOther            = "Other"
)

// EmailDomains is the consumer email-domain whitelist used both in query
// building and in contact extraction.
var EmailDomains = []string{
	"@gmail.com", "@outlook.com", "@hotmail.com", "@live.com",
	"@yahoo.com", "@icloud.com", "@me.com", "@aol.com",
	"@comcast.net", "@verizon.net", "@att.net",
}

// SocialSites lists the social domains templates search by default.
var SocialSites = []string{
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"linkedin.com",
	"reddit.com",
	"tiktok.com",
	"nextdoor.com",
	"youtube.com",
	"pinterest.com",
	"craigslist.org",
}

// Template bundles the facets of one lead-finding strategy.
type Template struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	Category         string   `yaml:"category"`
	Keywords         []string `yaml:"keywords"`
	IntentPhrases    []string `yaml:"intent_phrases"`
	Sites            []string `yaml:"sites"`
	ExcludeTerms     []string `yaml:"exclude_terms"`
	RedditSubreddits []string `yaml:"reddit_subreddits"`
	PlacesQuery      string   `yaml:"places_query"`
}

// RequiresContact reports whether candidates from this template must carry
// an email or phone to be persisted. Service-provider templates do; the
// "people" categories instead require an intent or keyword match.
func (t Template) RequiresContact() bool {
	return t.Category == CategoryServiceProviders
}

// Registry maps template names to definitions.
type Registry struct {
	templates map[string]Template
}

// Builtin returns a registry with the built-in templates.
func Builtin() *Registry {
	r := &Registry{templates: make(map[string]Template, len(builtin))}
	for _, t := range builtin {
		r.templates[t.Name] = t
	}
	return r
}

// Load returns the built-in registry with templates from a YAML file merged
// over it. An empty path returns the built-ins unchanged.
func Load(path string) (*Registry, error) {
	r := Builtin()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "templates: read %s", path)
	}

	var custom []Template
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return nil, eris.Wrapf(err, "templates: parse %s", path)
	}

	for _, t := range custom {
		if t.Name == "" {
			return nil, eris.Errorf("templates: unnamed template in %s", path)
		}
		if t.Category == "" {
			t.Category = CategoryOther
		}
		if len(t.Sites) == 0 {
			t.Sites = SocialSites
		}
		r.templates[t.Name] = t
	}
	return r, nil
}

// Get looks up a template by name.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, eris.Errorf("templates: %q not found (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return t, nil
}

// Names returns all template names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByCategory groups template names by category, names sorted within each.
func (r *Registry) ByCategory() map[string][]string {
	out := make(map[string][]string)
	for name, t := range r.templates {
		out[t.Category] = append(out[t.Category], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

var builtin = []Template{
	{
		Name:        "realtors",
		Description: "Find real estate agents and realtors",
		Category:    CategoryServiceProviders,
		Keywords: []string{
			"realtor", "real estate agent", "listing agent",
			"buyer's agent", "broker", "real estate broker",
		},
		IntentPhrases: []string{
			"looking for a realtor", "need a realtor", "recommend a realtor",
			"real estate agent recommendations", "seeking a realtor",
			"looking for a real estate agent",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"job", "hiring", "career"},
		RedditSubreddits: []string{"RealEstate", "realtors"},
		PlacesQuery:      "realtor",
	},
	{
		Name:        "contractors",
		Description: "Find contractors and home improvement professionals",
		Category:    CategoryServiceProviders,
		Keywords: []string{
			"contractor", "general contractor", "licensed contractor",
			"home improvement", "handyman", "remodeling", "renovation",
			"home renovation",
		},
		IntentPhrases: []string{
			"looking for a contractor", "need a contractor",
			"recommend a contractor", "any contractor recommendations",
			"looking for a handyman", "need a handyman",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"job", "hiring", "career"},
		RedditSubreddits: []string{"Contractor", "HomeImprovement"},
		PlacesQuery:      "contractor",
	},
	{
		Name:        "home_buyers",
		Description: "Find people who recently bought homes",
		Category:    CategoryHomeBuyers,
		Keywords: []string{
			"just bought a house", "new homeowner", "bought my first home",
			"closed on my house", "new home purchase", "house closing",
			"finally a homeowner", "offer accepted", "under contract",
		},
		IntentPhrases: []string{
			"looking to buy a home", "house hunting", "first time buyer",
			"buying a house", "pre-approved for mortgage",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"realtor", "agent", "for sale", "listing"},
		RedditSubreddits: []string{"RealEstate", "homeowners"},
	},
	{
		Name:        "first_time_buyers",
		Description: "Find first-time home buyers",
		Category:    CategoryHomeBuyers,
		Keywords: []string{
			"first time home buyer", "first home", "buying my first house",
			"looking to buy a home", "house hunting",
			"pre-approved for mortgage", "mortgage pre-approval",
		},
		IntentPhrases: []string{
			"first time buyer", "buying my first home", "looking to buy a home",
			"house hunting", "need a mortgage",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"realtor", "agent", "tips", "advice"},
		RedditSubreddits: []string{"FirstTimeHomeBuyer", "RealEstate"},
	},
	{
		Name:        "home_sellers",
		Description: "Find people looking to sell their homes",
		Category:    CategoryHomeSellers,
		Keywords: []string{
			"selling my house", "need to sell my home", "house for sale",
			"looking for a realtor", "need a real estate agent",
			"want to list my house", "sell my home", "list my home",
		},
		IntentPhrases: []string{
			"need to sell my house", "looking to sell my home",
			"want to list my house", "selling my home", "need a realtor",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"realtor", "agent", "I can help"},
		RedditSubreddits: []string{"RealEstate", "homeowners"},
	},
	{
		Name:        "downsizing",
		Description: "Find people downsizing/selling homes",
		Category:    CategoryHomeSellers,
		Keywords: []string{
			"downsizing our home", "empty nester", "moving to smaller house",
			"selling family home", "too much house", "retiring and moving",
			"downsizing house",
		},
		IntentPhrases: []string{
			"looking to downsize", "downsizing our home",
			"moving to a smaller house", "sell family home",
			"empty nest downsizing",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"realtor", "agent"},
		RedditSubreddits: []string{"RealEstate", "retirement"},
	},
	{
		Name:        "renovation_needed",
		Description: "Find people needing home renovations",
		Category:    CategoryHomeImprovement,
		Keywords: []string{
			"need renovation", "fixer upper", "home improvement needed",
			"need to remodel", "kitchen renovation", "bathroom remodel",
			"need contractor", "home remodel", "renovation project",
		},
		IntentPhrases: []string{
			"need a contractor", "looking for a contractor", "need renovation",
			"need to remodel", "remodeling contractor",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"contractor", "business", "hire me"},
		RedditSubreddits: []string{"HomeImprovement", "Renovations"},
	},
	{
		Name:        "home_repair",
		Description: "Find people needing home repairs",
		Category:    CategoryHomeImprovement,
		Keywords: []string{
			"need handyman", "home repair needed", "roof repair", "roof leak",
			"leaking roof", "plumbing leak", "plumbing issue", "water heater",
			"pipe burst", "electrical problem", "electrical repair",
			"hvac repair", "ac repair", "furnace repair", "sump pump",
			"foundation crack", "drywall repair", "water damage",
		},
		IntentPhrases: []string{
			"need repair", "need a handyman", "looking for repair", "fix my",
			"repair needed", "plumber recommendation",
			"electrician recommendation", "roof repair", "plumbing issue",
			"hvac repair", "water heater repair",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"contractor", "business", "hire me"},
		RedditSubreddits: []string{"HomeImprovement", "Plumbing", "hvacadvice"},
	},
	{
		Name:        "relocating",
		Description: "Find people relocating to new areas",
		Category:    CategoryOther,
		Keywords: []string{
			"moving to", "relocating to", "transferring to", "new job in",
			"just moved to", "looking for housing in", "moving for work",
			"relocation",
		},
		IntentPhrases: []string{
			"moving to", "relocating to", "just moved to",
			"looking for housing", "relocation assistance",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"realtor", "agent", "moving company"},
		RedditSubreddits: []string{"relocating", "SameGrassButGreener"},
	},
	{
		Name:        "investors",
		Description: "Find real estate investors",
		Category:    CategoryOther,
		Keywords: []string{
			"investment property", "rental property",
			"looking to invest in real estate", "building portfolio",
			"fix and flip", "house flipping", "cash buyer",
			"real estate investor",
		},
		IntentPhrases: []string{
			"looking to invest", "seeking investment property",
			"buying rental property", "fix and flip", "real estate investor",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"course", "coaching", "mentor"},
		RedditSubreddits: []string{"realestateinvesting", "Landlord"},
		PlacesQuery:      "real estate investor",
	},
	{
		Name:        "urgent_sellers",
		Description: "Find people who need to sell quickly",
		Category:    CategoryHomeSellers,
		Keywords: []string{
			"need to sell fast", "quick sale needed", "divorce selling house",
			"inherited house", "foreclosure", "sell house quickly",
			"motivated seller", "need to sell quickly",
		},
		IntentPhrases: []string{
			"need to sell fast", "sell my house quickly", "urgent sale",
			"motivated seller", "sell fast",
		},
		Sites:            SocialSites,
		ExcludeTerms:     []string{"buy houses", "we buy", "cash offer"},
		RedditSubreddits: []string{"RealEstate"},
	},
}
