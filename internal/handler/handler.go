package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/catalog"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/middleware"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/obs"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner/cache"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/ratelimit"
)

// Handler handles HTTP requests.
type Handler struct {
	planner     *planner.Planner
	catalog     *catalog.Catalog
	cache       *cache.Cache
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *slog.Logger
}

// New creates a new Handler.
func New(
	p *planner.Planner,
	cat *catalog.Catalog,
	searchCache *cache.Cache,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		planner:     p,
		catalog:     cat,
		cache:       searchCache,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// SearchResponse represents the complete /search response.
type SearchResponse struct {
	Search SearchInfo     `json:"search"`
	Stats  SearchStats    `json:"stats"`
	Found  bool           `json:"found"`
	Reason string         `json:"reason,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// SearchInfo echoes the search parameters, including derived values.
type SearchInfo struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	ReturnDate  string  `json:"return_date"`
	Days        int     `json:"days"`
	Nights      int     `json:"nights"`
	Budget      float64 `json:"budget"`
}

// SearchStats contains search statistics.
type SearchStats struct {
	Cache      string `json:"cache"`
	DurationMs int64  `json:"duration_ms"`
}

// SearchHandler handles /search requests.
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	h.metrics.IncSearches()
	requestID := middleware.RequestID(r.Context())

	ip := ExtractIP(r)
	if !h.rateLimiter.Allow(ip) {
		h.logger.Warn("rate limit exceeded", "request_id", requestID, "ip", ip)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	req, err := ParseSearchRequest(r)
	if err != nil {
		h.logger.Debug("invalid request parameters", "request_id", requestID, "error", err, "ip", ip)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := h.cache.Key(*req)
	result, cacheHit, err := h.cache.GetOrSearch(r.Context(), key, func() (*planner.Result, error) {
		res, err := h.planner.FindOptions(h.catalog.Flights, h.catalog.Hotels, *req)
		if errors.Is(err, planner.ErrNoMatch) {
			// A negative outcome is a valid, cacheable answer.
			return nil, nil
		}
		return res, err
	})
	if err != nil {
		h.logger.Error("search failed",
			"request_id", requestID,
			"error", err,
			"origin", req.Origin,
			"destination", req.Destination,
			"ip", ip,
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.IncCacheHits()
	}

	response := SearchResponse{
		Search: SearchInfo{
			Origin:      req.Origin,
			Destination: req.Destination,
			StartDate:   req.StartDate.Format("2006-01-02"),
			ReturnDate:  req.ReturnDate().Format("2006-01-02"),
			Days:        req.Days,
			Nights:      req.Nights(),
			Budget:      req.Budget,
		},
		Stats: SearchStats{
			Cache:      cacheStatus,
			DurationMs: time.Since(startTime).Milliseconds(),
		},
	}

	if result == nil {
		h.metrics.IncNoMatches()
		response.Reason = "no flight and hotel combination fits the budget and dates"
	} else {
		response.Found = true
		response.Result = result.Payload()
	}

	writeJSON(w, http.StatusOK, response, h.logger)
}

// DestinationsResponse lists the cities the hotel catalog can serve.
type DestinationsResponse struct {
	Destinations []string `json:"destinations"`
}

// DestinationsHandler handles /destinations requests.
func (h *Handler) DestinationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DestinationsResponse{
		Destinations: catalog.Destinations(h.catalog.Hotels),
	}, h.logger)
}

// ParseSearchRequest parses and validates search parameters from the request.
func ParseSearchRequest(r *http.Request) (*planner.Request, error) {
	query := r.URL.Query()

	origin := strings.TrimSpace(query.Get("origin"))
	if origin == "" {
		return nil, fmt.Errorf("origin is required")
	}

	destination := strings.TrimSpace(query.Get("destination"))
	if destination == "" {
		return nil, fmt.Errorf("destination is required")
	}

	startStr := strings.TrimSpace(query.Get("start"))
	if startStr == "" {
		return nil, fmt.Errorf("start is required")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil, fmt.Errorf("start must be in YYYY-MM-DD format")
	}

	daysStr := query.Get("days")
	if daysStr == "" {
		return nil, fmt.Errorf("days is required")
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		return nil, fmt.Errorf("days must be a positive integer")
	}

	budgetStr := query.Get("budget")
	if budgetStr == "" {
		return nil, fmt.Errorf("budget is required")
	}
	budget, err := strconv.ParseFloat(budgetStr, 64)
	if err != nil || budget < 0 {
		return nil, fmt.Errorf("budget must be a non-negative number")
	}

	return &planner.Request{
		Origin:      origin,
		Destination: destination,
		StartDate:   start,
		Days:        days,
		Budget:      budget,
	}, nil
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
