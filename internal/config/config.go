// Package config loads application configuration from file and
// environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Reddit    RedditConfig    `yaml:"reddit" mapstructure:"reddit"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google API credentials.
type GoogleConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	CSEID        string `yaml:"cse_id" mapstructure:"cse_id"`
	PlacesAPIKey string `yaml:"places_api_key" mapstructure:"places_api_key"`
}

// SearchConfig configures discovery runs.
type SearchConfig struct {
	MaxResults       int     `yaml:"max_results" mapstructure:"max_results"`
	RateLimitRPS     float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	PlacesRadius     float64 `yaml:"places_radius_miles" mapstructure:"places_radius_miles"`
	RedditMaxAgeDays int     `yaml:"reddit_max_age_days" mapstructure:"reddit_max_age_days"`
}

// RedditConfig configures reddit post-age lookups.
type RedditConfig struct {
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	Workers      int     `yaml:"workers" mapstructure:"workers"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// ExportConfig configures spreadsheet exports.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// TemplatesConfig points at an optional custom template file.
type TemplatesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one, including the empty-string
	// credentials: AutomaticEnv only surfaces env values for keys viper
	// already knows about.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/leads.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.cse_id", "")
	v.SetDefault("google.places_api_key", "")
	v.SetDefault("templates.path", "")
	v.SetDefault("search.max_results", 30)
	v.SetDefault("search.rate_limit_rps", 1.0)
	v.SetDefault("search.places_radius_miles", 25.0)
	v.SetDefault("search.reddit_max_age_days", 60)
	v.SetDefault("reddit.user_agent", "LeadFinderBot/1.0")
	v.SetDefault("reddit.workers", 4)
	v.SetDefault("reddit.rate_limit_rps", 2.0)
	v.SetDefault("export.output_dir", "output")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings needed for discovery runs are
// present. Read-only commands work without credentials.
func (c *Config) Validate() error {
	if c.Google.APIKey == "" || c.Google.CSEID == "" {
		return eris.New("config: google.api_key and google.cse_id are required (set LEADSCOUT_GOOGLE_API_KEY and LEADSCOUT_GOOGLE_CSE_ID)")
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return eris.New("config: store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
