// Package planner finds the single (round-trip flight, hotel stay) combination
// whose combined price is the maximum value not exceeding a budget.
//
// The search is pure computation over already-loaded catalog records: no I/O,
// no shared mutable state, identical inputs always produce identical results.
// A loaded catalog may therefore be shared across concurrent FindOptions calls.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/catalog"
)

// ErrNoMatch is returned when no flight/hotel combination satisfies the
// request. It is a normal negative outcome, not a failure; callers must
// handle it explicitly.
var ErrNoMatch = errors.New("no matching trip found")

// epsilon is the tolerance for all monetary comparisons. Totals within
// epsilon of the budget are accepted; totals within epsilon of each other
// are ties.
const epsilon = 1e-6

// DefaultMaxPairs bounds how many round-trip combinations a single search
// will enumerate.
const DefaultMaxPairs = 50000

// Request describes one trip search.
type Request struct {
	Origin      string
	Destination string
	StartDate   time.Time
	Days        int
	Budget      float64
}

// Nights is the hotel-billing unit: max(1, Days-1). A same-day-return trip
// is still charged one night.
func (r Request) Nights() int {
	if r.Days <= 2 {
		return 1
	}
	return r.Days - 1
}

// ReturnDate is the date of the return leg, StartDate + (Days-1) days.
func (r Request) ReturnDate() time.Time {
	return catalog.Day(r.StartDate).AddDate(0, 0, r.Days-1)
}

// Validate checks the request fields the search depends on.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Origin) == "" {
		return fmt.Errorf("origin is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if r.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	if r.Budget < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	return nil
}

// RoundTrip pairs an outbound and a return fare, priced as the sum of both.
// Generated transiently per search, never persisted.
type RoundTrip struct {
	Outbound catalog.FareRecord
	Return   catalog.FareRecord
	Price    float64
}

// Result is the best combination found for a request.
type Result struct {
	Flight     RoundTrip
	Hotel      catalog.HotelRecord
	HotelTotal float64
	Total      float64
}

// Payload converts the result to the flat key-value structure the booking
// collaborator consumes: the raw source fields of both legs and the hotel,
// plus the computed prices.
func (r *Result) Payload() map[string]any {
	return map[string]any{
		"outbound":            copyFields(r.Flight.Outbound.Fields),
		"return":              copyFields(r.Flight.Return.Fields),
		"roundtrip_price_usd": r.Flight.Price,
		"hotel":               copyFields(r.Hotel.Fields),
		"hotel_total_usd":     r.HotelTotal,
		"total_price_usd":     r.Total,
	}
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Planner runs trip searches over loaded catalogs.
type Planner struct {
	maxPairs int
	logger   *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithMaxPairs caps how many round-trip combinations a search enumerates.
// Once the cap is hit, remaining combinations are not considered; this is
// bounded effort, not an error.
func WithMaxPairs(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxPairs = n
		}
	}
}

// New creates a new Planner.
func New(logger *slog.Logger, opts ...Option) *Planner {
	p := &Planner{
		maxPairs: DefaultMaxPairs,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FindOptions returns the (round trip, hotel) combination with the maximum
// total price not exceeding the request budget, or ErrNoMatch if no feasible
// combination exists. Ties on total are broken by hotel rating (a present
// rating beats an absent one), then by higher round-trip flight spend, then
// by keeping the earlier candidate in hotel iteration order.
func (p *Planner) FindOptions(flights []catalog.FareRecord, hotels []catalog.HotelRecord, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := catalog.Day(req.StartDate)
	returnDate := req.ReturnDate()
	nights := req.Nights()

	outbound := filterLegs(flights, req.Origin, req.Destination, start, catalog.DirectionOutbound)
	returning := filterLegs(flights, req.Destination, req.Origin, returnDate, catalog.DirectionReturn)
	if len(outbound) == 0 || len(returning) == 0 {
		return nil, ErrNoMatch
	}

	trips := p.enumerateRoundTrips(outbound, returning)
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].Price < trips[j].Price
	})
	prices := make([]float64, len(trips))
	for i, rt := range trips {
		prices[i] = rt.Price
	}

	stays := eligibleStays(hotels, req.Destination, start, returnDate, nights)
	if len(stays) == 0 {
		return nil, ErrNoMatch
	}

	var best *Result
	for _, stay := range stays {
		remaining := req.Budget - stay.total
		if remaining < -epsilon {
			continue
		}

		// Rightmost round-trip price <= remaining, within tolerance.
		idx := sort.Search(len(prices), func(i int) bool {
			return prices[i] > remaining+epsilon
		}) - 1
		if idx < 0 {
			continue
		}

		candidate := &Result{
			Flight:     trips[idx],
			Hotel:      stay.hotel,
			HotelTotal: stay.total,
			Total:      trips[idx].Price + stay.total,
		}

		switch {
		case best == nil:
			best = candidate
		case candidate.Total > best.Total+epsilon:
			best = candidate
		case math.Abs(candidate.Total-best.Total) <= epsilon && prefersOnTie(candidate, best):
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrNoMatch
	}

	p.logger.Debug("trip search complete",
		"origin", req.Origin,
		"destination", req.Destination,
		"round_trips", len(trips),
		"hotels", len(stays),
		"total", best.Total,
	)

	return best, nil
}

// filterLegs keeps fares matching the route and date. Fares carrying a
// direction must match want; fares without one are candidates for either leg.
func filterLegs(flights []catalog.FareRecord, origin, destination string, date time.Time, want catalog.Direction) []catalog.FareRecord {
	var legs []catalog.FareRecord
	for _, f := range flights {
		if !strings.EqualFold(f.Origin, origin) || !strings.EqualFold(f.Destination, destination) {
			continue
		}
		if !f.Date.Equal(date) {
			continue
		}
		if f.Direction != catalog.DirectionNone && f.Direction != want {
			continue
		}
		legs = append(legs, f)
	}
	return legs
}

// enumerateRoundTrips builds the cross product of outbound and return legs,
// stopping once maxPairs combinations have been generated.
func (p *Planner) enumerateRoundTrips(outbound, returning []catalog.FareRecord) []RoundTrip {
	capacity := len(outbound) * len(returning)
	if capacity > p.maxPairs {
		capacity = p.maxPairs
	}

	trips := make([]RoundTrip, 0, capacity)
	for _, o := range outbound {
		for _, r := range returning {
			trips = append(trips, RoundTrip{
				Outbound: o,
				Return:   r,
				Price:    o.Price + r.Price,
			})
			if len(trips) >= p.maxPairs {
				p.logger.Warn("round-trip enumeration cap reached",
					"max_pairs", p.maxPairs,
					"outbound", len(outbound),
					"return", len(returning),
				)
				return trips
			}
		}
	}
	return trips
}

type stay struct {
	hotel catalog.HotelRecord
	total float64
}

// eligibleStays keeps hotels in the destination city whose availability
// window (if any) covers the whole stay, priced over the night count and
// sorted by descending stay total. The sort is stable so input order decides
// among equal totals.
func eligibleStays(hotels []catalog.HotelRecord, destination string, checkin, checkout time.Time, nights int) []stay {
	var stays []stay
	for _, h := range hotels {
		if !strings.EqualFold(h.City, destination) {
			continue
		}
		if !h.Available(checkin, checkout) {
			continue
		}
		stays = append(stays, stay{
			hotel: h,
			total: h.NightlyPrice * float64(nights),
		})
	}
	sort.SliceStable(stays, func(i, j int) bool {
		return stays[i].total > stays[j].total
	})
	return stays
}

// prefersOnTie decides whether candidate replaces best when their totals are
// equal within tolerance: higher hotel rating first (a present rating beats
// an absent one), then higher round-trip flight spend. Anything else keeps
// the earlier candidate.
func prefersOnTie(candidate, best *Result) bool {
	cr, br := candidate.Hotel.Rating, best.Hotel.Rating
	switch {
	case cr != nil && br != nil:
		if *cr > *br {
			return true
		}
		if *cr < *br {
			return false
		}
	case cr != nil:
		return true
	case br != nil:
		return false
	}
	return candidate.Flight.Price > best.Flight.Price
}
