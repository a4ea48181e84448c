package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/config"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 50000, cfg.Search.MaxPairs)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 10, cfg.Search.RateLimitPerMinute)
	assert.Equal(t, "data/mock_flights_by_date.csv", cfg.Catalog.FlightsPath)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
catalog:
  flights_path: /srv/flights.csv
  hotels_path: /srv/hotels.csv
search:
  max_pairs: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "/srv/flights.csv", cfg.Catalog.FlightsPath)
	assert.Equal(t, 1000, cfg.Search.MaxPairs)
	// Untouched settings keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 10, cfg.Server.ReadTimeoutSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty address", "server:\n  address: \"\"\n"},
		{"zero max pairs", "search:\n  max_pairs: 0\n"},
		{"empty catalog path", "catalog:\n  flights_path: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}
