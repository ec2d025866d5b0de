package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRegistry(t *testing.T) {
	r := Builtin()

	assert.Len(t, r.Names(), 11)

	realtors, err := r.Get("realtors")
	require.NoError(t, err)
	assert.Equal(t, CategoryServiceProviders, realtors.Category)
	assert.True(t, realtors.RequiresContact())
	assert.Contains(t, realtors.Keywords, "realtor")
	assert.Contains(t, realtors.IntentPhrases, "looking for a realtor")
	assert.Equal(t, SocialSites, realtors.Sites)

	sellers, err := r.Get("home_sellers")
	require.NoError(t, err)
	assert.False(t, sellers.RequiresContact())

	_, err = r.Get("nope")
	assert.Error(t, err)
}

func TestByCategory(t *testing.T) {
	groups := Builtin().ByCategory()

	assert.ElementsMatch(t, []string{"realtors", "contractors"}, groups[CategoryServiceProviders])
	assert.ElementsMatch(t, []string{"home_sellers", "downsizing", "urgent_sellers"}, groups[CategoryHomeSellers])
}

func TestLoadCustomTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	custom := `
- name: luxury_buyers
  description: Find luxury home buyers
  category: Home Buyers
  keywords: ["luxury home", "waterfront property"]
  intent_phrases: ["looking for a luxury home"]
- name: realtors
  description: Overridden realtors
  category: Service Providers
  keywords: ["realtor"]
`
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	// New template present, with site default filled in.
	lux, err := r.Get("luxury_buyers")
	require.NoError(t, err)
	assert.Equal(t, SocialSites, lux.Sites)
	assert.False(t, lux.RequiresContact())

	// Built-in overridden.
	realtors, err := r.Get("realtors")
	require.NoError(t, err)
	assert.Equal(t, "Overridden realtors", realtors.Description)

	assert.Len(t, r.Names(), 12)
}

func TestLoadEmptyPathReturnsBuiltins(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Len(t, r.Names(), 11)
}

func TestLoadRejectsUnnamedTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- description: no name\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
