// Package config handles application configuration from an optional YAML
// file, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/randytsao24/textmystop/internal/stops"
	"github.com/randytsao24/textmystop/internal/viewmodel"
)

// DefaultConfigFile is read when CONFIG_FILE is not set and the file exists
const DefaultConfigFile = "config.yml"

// Config holds all application configuration.
type Config struct {
	Port             string          `yaml:"port" validate:"required,numeric"`
	Env              string          `yaml:"env" validate:"oneof=development production test"`
	LogLevel         string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	StopsSource      string          `yaml:"stops_source" validate:"required"`
	PostalCodesFile  string          `yaml:"postal_codes_file"`
	TripUpdatesURL   string          `yaml:"trip_updates_url" validate:"omitempty,url"`
	ServiceAlertsURL string          `yaml:"service_alerts_url" validate:"omitempty,url"`
	SMSRecipient     string          `yaml:"sms_recipient" validate:"required"`
	GroupByDirection bool            `yaml:"group_by_direction"`
	RadiusTiers      []float64       `yaml:"radius_tiers" validate:"omitempty,dive,gt=0"`
	Columns          stops.ColumnMap `yaml:"columns"`

	SearchDebounceMS   int `yaml:"search_debounce_ms" validate:"gte=0"`
	CacheTTLSeconds    int `yaml:"cache_ttl_seconds" validate:"gte=0"`
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" validate:"gt=0"`

	SearchDebounce time.Duration `yaml:"-"`
	CacheTTL       time.Duration `yaml:"-"`
	HTTPTimeout    time.Duration `yaml:"-"`
}

// Load builds the configuration. Precedence, lowest first: defaults, the
// YAML file, environment variables (including those from .env).
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.resolveDurations()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:               "3000",
		Env:                "development",
		LogLevel:           "info",
		StopsSource:        "data/stops.csv",
		PostalCodesFile:    "data/toronto-fsa.json",
		SMSRecipient:       "89882",
		SearchDebounceMS:   300,
		CacheTTLSeconds:    30,
		HTTPTimeoutSeconds: 10,
		Columns:            stops.DefaultColumns(),
	}
}

// LoadFile overlays values from a YAML file onto c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.Columns = c.Columns.WithDefaults()
	c.resolveDurations()
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.StopsSource = getEnv("STOPS_SOURCE", c.StopsSource)
	c.PostalCodesFile = getEnv("POSTAL_CODES_FILE", c.PostalCodesFile)
	c.TripUpdatesURL = getEnv("TRIP_UPDATES_URL", c.TripUpdatesURL)
	c.ServiceAlertsURL = getEnv("SERVICE_ALERTS_URL", c.ServiceAlertsURL)
	c.SMSRecipient = getEnv("SMS_RECIPIENT", c.SMSRecipient)
	c.GroupByDirection = getBoolEnv("GROUP_BY_DIRECTION", c.GroupByDirection)
	c.SearchDebounceMS = getIntEnv("SEARCH_DEBOUNCE_MS", c.SearchDebounceMS)
	c.CacheTTLSeconds = getIntEnv("CACHE_TTL_SECONDS", c.CacheTTLSeconds)
	c.HTTPTimeoutSeconds = getIntEnv("HTTP_TIMEOUT_SECONDS", c.HTTPTimeoutSeconds)

	if value := os.Getenv("RADIUS_TIERS"); value != "" {
		tiers, err := viewmodel.ParseRadiusTiers(value)
		if err != nil {
			return fmt.Errorf("RADIUS_TIERS: %w", err)
		}
		c.RadiusTiers = tiers
	}
	return nil
}

func (c *Config) resolveDurations() {
	c.SearchDebounce = time.Duration(c.SearchDebounceMS) * time.Millisecond
	c.CacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that required configuration is present and well formed.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for i, r := range c.RadiusTiers {
		if !viewmodel.ValidRadius(r) {
			return fmt.Errorf("invalid configuration: radius tier %v", r)
		}
		if i > 0 && r <= c.RadiusTiers[i-1] {
			return fmt.Errorf("invalid configuration: radius tiers must increase, got %v", c.RadiusTiers)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
