package obs

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks application metrics using atomic counters.
type Metrics struct {
	searches    atomic.Int64
	cacheHits   atomic.Int64
	noMatches   atomic.Int64
	rowsDropped atomic.Int64
	logger      *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger,
	}
}

// IncSearches increments the total search counter.
func (m *Metrics) IncSearches() {
	m.searches.Add(1)
}

// IncCacheHits increments the cache hits counter.
func (m *Metrics) IncCacheHits() {
	m.cacheHits.Add(1)
}

// IncNoMatches increments the counter of searches that found no feasible plan.
func (m *Metrics) IncNoMatches() {
	m.noMatches.Add(1)
}

// IncRowsDropped increments the counter of malformed catalog rows dropped at load.
func (m *Metrics) IncRowsDropped() {
	m.rowsDropped.Add(1)
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Searches:    m.searches.Load(),
		CacheHits:   m.cacheHits.Load(),
		NoMatches:   m.noMatches.Load(),
		RowsDropped: m.rowsDropped.Load(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Searches    int64
	CacheHits   int64
	NoMatches   int64
	RowsDropped int64
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.Snapshot()

		counters := []struct {
			name  string
			help  string
			value int64
		}{
			{"searches_total", "Total number of trip searches", snapshot.Searches},
			{"cache_hits_total", "Total number of search cache hits", snapshot.CacheHits},
			{"no_match_total", "Total number of searches with no feasible plan", snapshot.NoMatches},
			{"catalog_rows_dropped_total", "Total number of malformed catalog rows dropped", snapshot.RowsDropped},
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)

		for _, c := range counters {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n",
				c.name, c.help, c.name, c.name, c.value); err != nil {
				m.logger.Error("failed to write metrics", "error", err)
				return
			}
		}
	}
}
