package config

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key Load reads so the host environment cannot
// leak into the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ENV", "LOG_LEVEL", "STOPS_SOURCE", "POSTAL_CODES_FILE",
		"TRIP_UPDATES_URL", "SERVICE_ALERTS_URL", "SMS_RECIPIENT", "GROUP_BY_DIRECTION",
		"SEARCH_DEBOUNCE_MS", "CACHE_TTL_SECONDS", "HTTP_TIMEOUT_SECONDS", "RADIUS_TIERS",
	} {
		t.Setenv(key, "")
	}
	// Load looks for .env and config.yml in the working directory
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Port != "3000" || cfg.Env != "development" || cfg.SMSRecipient != "89882" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("SearchDebounce = %v", cfg.SearchDebounce)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("CacheTTL = %v, HTTPTimeout = %v", cfg.CacheTTL, cfg.HTTPTimeout)
	}
	if len(cfg.Columns.ID) == 0 {
		t.Error("default column aliases should be set")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "textmystop.yml")
	yml := `
port: "8080"
stops_source: https://example.test/stops.csv
group_by_direction: true
radius_tiers: [500, 750, 1000]
columns:
  id: [code]
  name: [title]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want the environment to win", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want lower-cased", cfg.LogLevel)
	}
	if cfg.StopsSource != "https://example.test/stops.csv" || !cfg.GroupByDirection {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.RadiusTiers, []float64{500, 750, 1000}) {
		t.Errorf("RadiusTiers = %v", cfg.RadiusTiers)
	}
	if !reflect.DeepEqual(cfg.Columns.ID, []string{"code"}) || len(cfg.Columns.Latitude) == 0 {
		t.Errorf("Columns = %+v, want overrides plus defaults", cfg.Columns)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing config file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yml"))
		if _, err := Load(); err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("bad radius tiers", func(t *testing.T) {
		t.Setenv("RADIUS_TIERS", "500,abc")
		if _, err := Load(); err == nil {
			t.Error("expected an error for RADIUS_TIERS")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"no stops source", func(c *Config) { c.StopsSource = "" }},
		{"bad feed url", func(c *Config) { c.TripUpdatesURL = "not a url" }},
		{"no recipient", func(c *Config) { c.SMSRecipient = "" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeoutSeconds = 0 }},
		{"negative tier", func(c *Config) { c.RadiusTiers = []float64{-1} }},
		{"tiers not increasing", func(c *Config) { c.RadiusTiers = []float64{750, 500} }},
		{"infinite tier", func(c *Config) { c.RadiusTiers = []float64{500, math.Inf(1)} }},
		{"empty column alias", func(c *Config) { c.Columns.ID = []string{""} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			tc.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	if err := defaults().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
