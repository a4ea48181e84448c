package catalog

import "time"

// Direction marks which leg of a round trip a fare covers.
// DirectionNone means the source carried no direction column or a blank
// cell; such fares are candidates for either leg. DirectionUnknown means
// the cell held an unrecognized value; such fares serve neither leg.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionOutbound Direction = "OUTBOUND"
	DirectionReturn   Direction = "RETURN"
	DirectionUnknown  Direction = "UNKNOWN"
)

// FareRecord is a single one-way flight fare, immutable once loaded.
// Fields carries every source column verbatim so downstream consumers
// (receipt rendering, itinerary text) can use columns this service
// does not interpret.
type FareRecord struct {
	Origin      string
	Destination string
	Date        time.Time
	Direction   Direction
	Price       float64
	Fields      map[string]string
}

// HotelRecord is a single hotel with a flat nightly rate, immutable once loaded.
// Rating and the availability window are optional; a hotel without an
// availability window is available for any stay.
type HotelRecord struct {
	City         string
	NightlyPrice float64
	Rating       *float64
	AvailStart   *time.Time
	AvailEnd     *time.Time
	Fields       map[string]string
}

// Available reports whether the hotel can host a stay from checkin
// through checkout inclusive. Hotels without a complete availability
// window are always available.
func (h HotelRecord) Available(checkin, checkout time.Time) bool {
	if h.AvailStart == nil || h.AvailEnd == nil {
		return true
	}
	return !h.AvailStart.After(checkin) && !h.AvailEnd.Before(checkout)
}
