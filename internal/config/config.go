// Package config loads application configuration from a YAML file, with
// sensible defaults so the server runs without one.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the planner server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address             string `yaml:"address"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// CatalogConfig points at the flight and hotel catalog files.
type CatalogConfig struct {
	FlightsPath string `yaml:"flights_path"`
	HotelsPath  string `yaml:"hotels_path"`
}

// SearchConfig tunes the pairing search and its serving layer.
type SearchConfig struct {
	// MaxPairs caps round-trip enumeration per search.
	MaxPairs int `yaml:"max_pairs"`
	// CacheTTLSeconds is how long search results stay cached.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	// RateLimitPerMinute is the per-IP search request budget.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:             ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
			IdleTimeoutSeconds:  60,
		},
		Catalog: CatalogConfig{
			FlightsPath: "data/mock_flights_by_date.csv",
			HotelsPath:  "data/mock_hotels.csv",
		},
		Search: SearchConfig{
			MaxPairs:           50000,
			CacheTTLSeconds:    30,
			RateLimitPerMinute: 10,
		},
	}
}

// Load reads configuration from the given YAML file, layering it over the
// defaults. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Catalog.FlightsPath == "" || c.Catalog.HotelsPath == "" {
		return fmt.Errorf("catalog paths must not be empty")
	}
	if c.Search.MaxPairs < 1 {
		return fmt.Errorf("search.max_pairs must be positive")
	}
	if c.Search.CacheTTLSeconds < 0 || c.Search.RateLimitPerMinute < 1 {
		return fmt.Errorf("search cache/rate limit settings must be positive")
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLSeconds) * time.Second
}
