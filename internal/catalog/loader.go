// Package catalog loads flight-fare and hotel-rate catalogs from tabular
// sources into immutable in-memory record sets. Column names are resolved
// against ordered alias lists so that exports from different eras all load.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/obs"
)

// Catalog is a fully loaded, read-only inventory. Safe to share across
// concurrent searches; nothing mutates it after load.
type Catalog struct {
	Flights []FareRecord
	Hotels  []HotelRecord
}

// Loader parses catalog sources into record sets.
type Loader struct {
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(metrics *obs.Metrics, logger *slog.Logger) *Loader {
	return &Loader{
		metrics: metrics,
		logger:  logger,
	}
}

// LoadFiles loads both catalogs from CSV files.
func (l *Loader) LoadFiles(flightsPath, hotelsPath string) (*Catalog, error) {
	ff, err := os.Open(flightsPath)
	if err != nil {
		return nil, fmt.Errorf("open flights catalog: %w", err)
	}
	defer func() {
		_ = ff.Close()
	}()

	flights, err := l.LoadFlights(ff)
	if err != nil {
		return nil, err
	}

	hf, err := os.Open(hotelsPath)
	if err != nil {
		return nil, fmt.Errorf("open hotels catalog: %w", err)
	}
	defer func() {
		_ = hf.Close()
	}()

	hotels, err := l.LoadHotels(hf)
	if err != nil {
		return nil, err
	}

	l.logger.Info("catalog loaded",
		"flights", len(flights),
		"hotels", len(hotels),
	)

	return &Catalog{Flights: flights, Hotels: hotels}, nil
}

// LoadFlights parses a flight-fare CSV. Required logical fields: origin,
// destination, date, price. Rows with unparseable price or date cells are
// dropped with a warning; a missing required column is a SchemaError.
func (l *Loader) LoadFlights(r io.Reader) ([]FareRecord, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("flights catalog: %w", err)
	}

	originCol, err := requireColumn("flights", "origin", header, flightOriginAliases)
	if err != nil {
		return nil, err
	}
	destCol, err := requireColumn("flights", "destination", header, flightDestAliases)
	if err != nil {
		return nil, err
	}
	dateCol, err := requireColumn("flights", "date", header, flightDateAliases)
	if err != nil {
		return nil, err
	}
	priceCol, err := requireColumn("flights", "price", header, flightPriceAliases)
	if err != nil {
		return nil, err
	}
	directionCol := resolveColumn(header, flightDirectionAliases)

	flights := make([]FareRecord, 0, len(rows))
	for i, row := range rows {
		price, err := parsePrice(row[priceCol])
		if err != nil {
			l.dropRow("flights", i, err)
			continue
		}
		date, err := parseDate(row[dateCol])
		if err != nil {
			l.dropRow("flights", i, err)
			continue
		}

		rec := FareRecord{
			Origin:      strings.TrimSpace(row[originCol]),
			Destination: strings.TrimSpace(row[destCol]),
			Date:        date,
			Price:       price,
			Fields:      rowFields(header, row),
		}
		if directionCol >= 0 {
			rec.Direction = parseDirection(row[directionCol])
		}
		flights = append(flights, rec)
	}

	return flights, nil
}

// LoadHotels parses a hotel-rate CSV. Required logical fields: city, price.
// Rating and the availability window are optional; unparseable optional
// cells are treated as absent, unparseable prices drop the row.
func (l *Loader) LoadHotels(r io.Reader) ([]HotelRecord, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("hotels catalog: %w", err)
	}

	cityCol, err := requireColumn("hotels", "city", header, hotelCityAliases)
	if err != nil {
		return nil, err
	}
	priceCol, err := requireColumn("hotels", "price", header, hotelPriceAliases)
	if err != nil {
		return nil, err
	}
	ratingCol := resolveColumn(header, hotelRatingAliases)
	availStartCol := resolveColumn(header, hotelAvailStartAliases)
	availEndCol := resolveColumn(header, hotelAvailEndAliases)

	hotels := make([]HotelRecord, 0, len(rows))
	for i, row := range rows {
		price, err := parsePrice(row[priceCol])
		if err != nil {
			l.dropRow("hotels", i, err)
			continue
		}

		rec := HotelRecord{
			City:         strings.TrimSpace(row[cityCol]),
			NightlyPrice: price,
			Fields:       rowFields(header, row),
		}
		if ratingCol >= 0 {
			if rating, err := parsePrice(row[ratingCol]); err == nil {
				rec.Rating = &rating
			}
		}
		if availStartCol >= 0 && availEndCol >= 0 {
			start, errS := parseDate(row[availStartCol])
			end, errE := parseDate(row[availEndCol])
			if errS == nil && errE == nil {
				rec.AvailStart = &start
				rec.AvailEnd = &end
			}
		}
		hotels = append(hotels, rec)
	}

	return hotels, nil
}

// Destinations returns the sorted distinct city names present in the
// hotel catalog.
func Destinations(hotels []HotelRecord) []string {
	seen := make(map[string]struct{}, len(hotels))
	cities := make([]string, 0, len(hotels))
	for _, h := range hotels {
		if h.City == "" {
			continue
		}
		if _, ok := seen[h.City]; ok {
			continue
		}
		seen[h.City] = struct{}{}
		cities = append(cities, h.City)
	}
	sort.Strings(cities)
	return cities
}

func (l *Loader) dropRow(source string, index int, err error) {
	l.metrics.IncRowsDropped()
	l.logger.Warn("dropping malformed catalog row",
		"source", source,
		"row", index,
		"error", err,
	)
}

// readTable reads a CSV into a header and data rows. Rows with the wrong
// field count are skipped rather than failing the whole load.
func readTable(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				continue
			}
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func requireColumn(source, field string, header, aliases []string) (int, error) {
	col := resolveColumn(header, aliases)
	if col < 0 {
		return -1, &SchemaError{Source: source, Field: field, Aliases: aliases}
	}
	return col, nil
}

func rowFields(header, row []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		}
	}
	return fields
}
