package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column aliases, in priority order. Several generations of mock catalogs
// used different header names for the same logical field; the first alias
// present in a source wins.
var (
	flightOriginAliases    = []string{"departure_city", "origin", "from", "depart_city"}
	flightDestAliases      = []string{"arrival_city", "destination", "to", "arrive_city"}
	flightDateAliases      = []string{"departure_date", "date", "flight_date", "depart_date"}
	flightPriceAliases     = []string{"price_per_adult_usd", "price_usd", "price", "price_per_ticket_usd", "fare_usd"}
	flightDirectionAliases = []string{"direction"}

	hotelCityAliases       = []string{"city", "destination", "location"}
	hotelPriceAliases      = []string{"price_per_night_usd", "price_usd", "nightly_usd", "price_per_night"}
	hotelAvailStartAliases = []string{"availability_start_date"}
	hotelAvailEndAliases   = []string{"availability_end_date"}
	hotelRatingAliases     = []string{"rating_out_of_10", "star_rating", "stars"}
)

// SchemaError reports that a required logical field could not be resolved
// against any of its accepted column aliases. The load cannot proceed.
type SchemaError struct {
	Source  string // "flights" or "hotels"
	Field   string // logical field name, e.g. "origin"
	Aliases []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s catalog: no column found for %s (accepted: %s)",
		e.Source, e.Field, strings.Join(e.Aliases, ", "))
}

// resolveColumn returns the index of the first alias present in the header,
// or -1 if none matches.
func resolveColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, name := range header {
			if strings.TrimSpace(name) == alias {
				return i
			}
		}
	}
	return -1
}

// parsePrice parses a monetary cell. Thousands separators are tolerated
// ("1,299.50"); anything still unparseable after stripping them is an error.
// Negative prices are rejected.
func parsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return v, nil
}

// dateLayouts are the formats seen across historical catalog exports.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04:05"}

// parseDate parses a calendar-date cell and normalizes it to midnight UTC
// so record dates compare with time.Time.Equal.
func parseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseDirection maps a direction cell onto a Direction. A blank cell makes
// the fare usable for either leg; an unrecognized value makes it usable for
// neither, matching the exact-match filtering the direction column gets.
func parseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DirectionOutbound):
		return DirectionOutbound
	case string(DirectionReturn):
		return DirectionReturn
	case "":
		return DirectionNone
	default:
		return DirectionUnknown
	}
}

// Day truncates t to midnight UTC, the canonical form for catalog dates.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
