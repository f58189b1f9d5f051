package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/cesargomez89/requestline/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port      string `toml:"port"`
	DBPath    string `toml:"db_path"`
	PublicURL string `toml:"public_url"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	EnrichmentProvider string `toml:"enrichment_provider"`

	SpotifyClientID     string `toml:"spotify_client_id"`
	SpotifyClientSecret string `toml:"spotify_client_secret"`
	SpotifyTokenURL     string `toml:"spotify_token_url"`
	SpotifyAPIURL       string `toml:"spotify_api_url"`

	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	OpenAIModel   string `toml:"openai_model"`

	RedisURL      string        `toml:"redis_url"`
	CacheTTL      time.Duration `toml:"-"`
	EnrichTimeout time.Duration `toml:"-"`
	UpstreamRPS   float64       `toml:"upstream_rps"`

	// Durations are written as strings ("12h") in the config file.
	CacheTTLRaw      string `toml:"cache_ttl"`
	EnrichTimeoutRaw string `toml:"enrich_timeout"`

	parseErrors []string
}

// Defaults returns a configuration populated with built-in defaults only.
func Defaults() *Config {
	return &Config{
		Port:               constants.DefaultPort,
		DBPath:             constants.DefaultDBPath,
		LogLevel:           constants.DefaultLogLevel,
		LogFormat:          constants.DefaultLogFormat,
		EnrichmentProvider: constants.DefaultEnrichmentProvider,
		SpotifyTokenURL:    constants.DefaultSpotifyTokenURL,
		SpotifyAPIURL:      constants.DefaultSpotifyAPIURL,
		OpenAIBaseURL:      constants.DefaultOpenAIBaseURL,
		OpenAIModel:        constants.DefaultOpenAIModel,
		CacheTTL:           constants.DefaultCacheTTL,
		EnrichTimeout:      constants.DefaultEnrichTimeout,
		UpstreamRPS:        constants.DefaultUpstreamRPS,
	}
}

// Load builds configuration from defaults, a .env file, an optional TOML file
// named by CONFIG_FILE, and finally the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if c.CacheTTLRaw != "" {
		c.CacheTTL = c.parseDuration("cache_ttl", c.CacheTTLRaw, c.CacheTTL)
	}
	if c.EnrichTimeoutRaw != "" {
		c.EnrichTimeout = c.parseDuration("enrich_timeout", c.EnrichTimeoutRaw, c.EnrichTimeout)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", c.PublicURL), "/")
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.EnrichmentProvider = strings.ToLower(getEnv("ENRICHMENT_PROVIDER", c.EnrichmentProvider))
	c.SpotifyClientID = getEnv("SPOTIFY_CLIENT_ID", c.SpotifyClientID)
	c.SpotifyClientSecret = getEnv("SPOTIFY_CLIENT_SECRET", c.SpotifyClientSecret)
	c.SpotifyTokenURL = getEnv("SPOTIFY_TOKEN_URL", c.SpotifyTokenURL)
	c.SpotifyAPIURL = strings.TrimRight(getEnv("SPOTIFY_API_URL", c.SpotifyAPIURL), "/")
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = strings.TrimRight(getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL), "/")
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)

	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		c.CacheTTL = c.parseDuration("CACHE_TTL", v, c.CacheTTL)
	}
	if v, ok := os.LookupEnv("ENRICH_TIMEOUT"); ok {
		c.EnrichTimeout = c.parseDuration("ENRICH_TIMEOUT", v, c.EnrichTimeout)
	}
	if v, ok := os.LookupEnv("UPSTREAM_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.parseErrors = append(c.parseErrors, fmt.Sprintf("UPSTREAM_RPS must be a number, got: %s", v))
		} else {
			c.UpstreamRPS = rps
		}
	}
}

func (c *Config) parseDuration(key, raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s must be a duration like 15s or 12h, got: %s", key, raw))
		return fallback
	}
	return d
}

// SpotifyEnabled reports whether client credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// ResolvedProvider maps "auto" to the first provider with credentials.
func (c *Config) ResolvedProvider() string {
	if c.EnrichmentProvider != constants.ProviderAuto {
		return c.EnrichmentProvider
	}
	switch {
	case c.SpotifyEnabled():
		return constants.ProviderSpotify
	case c.OpenAIAPIKey != "":
		return constants.ProviderOpenAI
	default:
		return constants.ProviderNone
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	errors := append([]string(nil), c.parseErrors...)

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.PublicURL != "" {
		if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("PUBLIC_URL is not a valid absolute URL: %s", c.PublicURL))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text":   true,
		"json":   true,
		"logfmt": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, logfmt, got: %s", c.LogFormat))
	}

	switch c.EnrichmentProvider {
	case constants.ProviderAuto, constants.ProviderNone:
	case constants.ProviderSpotify:
		if !c.SpotifyEnabled() {
			errors = append(errors, "ENRICHMENT_PROVIDER=spotify requires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
		}
	case constants.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errors = append(errors, "ENRICHMENT_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		errors = append(errors, fmt.Sprintf("ENRICHMENT_PROVIDER must be one of: auto, spotify, openai, none, got: %s", c.EnrichmentProvider))
	}

	endpoints := []struct{ key, raw string }{
		{"SPOTIFY_TOKEN_URL", c.SpotifyTokenURL},
		{"SPOTIFY_API_URL", c.SpotifyAPIURL},
		{"OPENAI_BASE_URL", c.OpenAIBaseURL},
	}
	for _, e := range endpoints {
		if u, err := url.Parse(e.raw); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", e.key, e.raw))
		}
	}

	if c.RedisURL != "" {
		if u, err := url.Parse(c.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errors = append(errors, fmt.Sprintf("REDIS_URL must use redis:// or rediss://, got: %s", c.RedisURL))
		}
	}

	if c.CacheTTL <= 0 {
		errors = append(errors, "CACHE_TTL must be positive")
	}
	if c.EnrichTimeout <= 0 {
		errors = append(errors, "ENRICH_TIMEOUT must be positive")
	}
	if c.UpstreamRPS <= 0 {
		errors = append(errors, "UPSTREAM_RPS must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
