package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/leads.db", cfg.Store.Path)
	assert.Equal(t, 30, cfg.Search.MaxResults)
	assert.InDelta(t, 1.0, cfg.Search.RateLimitRPS, 0.001)
	assert.InDelta(t, 25.0, cfg.Search.PlacesRadius, 0.001)
	assert.Equal(t, 60, cfg.Search.RedditMaxAgeDays)
	assert.Equal(t, "LeadFinderBot/1.0", cfg.Reddit.UserAgent)
	assert.Equal(t, 4, cfg.Reddit.Workers)
	assert.InDelta(t, 2.0, cfg.Reddit.RateLimitRPS, 0.001)
	assert.Equal(t, "output", cfg.Export.OutputDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
search:
  max_results: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.Search.RedditMaxAgeDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADSCOUT_STORE_DRIVER", "sqlite")
	t.Setenv("LEADSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEADSCOUT_GOOGLE_API_KEY", "test-key")
	t.Setenv("LEADSCOUT_GOOGLE_CSE_ID", "test-cx")
	t.Setenv("LEADSCOUT_GOOGLE_PLACES_API_KEY", "places-key")
	t.Setenv("LEADSCOUT_STORE_DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("LEADSCOUT_SEARCH_MAX_RESULTS", "80")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Google.APIKey)
	assert.Equal(t, "test-cx", cfg.Google.CSEID)
	assert.Equal(t, "places-key", cfg.Google.PlacesAPIKey)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, 80, cfg.Search.MaxResults)
}

func TestLoadEnvOnlyCredentialsValidate(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	// Credentials supplied purely through the environment, no config file.
	t.Setenv("LEADSCOUT_GOOGLE_API_KEY", "env-key")
	t.Setenv("LEADSCOUT_GOOGLE_CSE_ID", "env-cx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Google.APIKey = "key"
	cfg.Google.CSEID = "cx"
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "data/leads.db"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingGoogleCreds(t *testing.T) {
	cfg := validConfig()
	cfg.Google.APIKey = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "google.api_key")

	cfg = validConfig()
	cfg.Google.CSEID = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_SQLiteNeedsPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Path = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path")
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")

	cfg.Store.DatabaseURL = "postgres://localhost/leads"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
