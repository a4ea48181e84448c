// Command mockdata writes mock flight and hotel catalogs for local
// development, in the same CSV shapes the historical data dumps used.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var routes = []struct {
	origin      string
	destination string
	base        float64
}{
	{"New York", "London", 420},
	{"New York", "Paris", 450},
	{"New York", "Tokyo", 780},
	{"Chicago", "London", 460},
	{"Chicago", "Rome", 520},
	{"San Francisco", "Tokyo", 700},
	{"San Francisco", "Paris", 560},
}

var hotelNames = []string{
	"Grand Hotel", "City Lodge", "Riverside Inn", "The Meridian",
	"Harbor View", "Old Town Suites", "Parkside Hotel", "The Atlas",
}

var airlines = []string{"Atlantic Air", "Pacific Wings", "Skyline", "Meridian Air"}

func main() {
	outDir := flag.String("out", "data", "output directory for the catalog files")
	seed := flag.Int64("seed", 42, "random seed")
	startStr := flag.String("start", "2024-06-01", "first departure date (YYYY-MM-DD)")
	days := flag.Int("days", 30, "number of departure dates to generate")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatalf("invalid start date: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	flightsPath := filepath.Join(*outDir, "mock_flights_by_date.csv")
	if err := writeFlights(flightsPath, rng, start, *days); err != nil {
		log.Fatalf("write flights: %v", err)
	}

	hotelsPath := filepath.Join(*outDir, "mock_hotels.csv")
	if err := writeHotels(hotelsPath, rng, start, *days); err != nil {
		log.Fatalf("write hotels: %v", err)
	}

	log.Printf("wrote %s and %s", flightsPath, hotelsPath)
}

func writeFlights(path string, rng *rand.Rand, start time.Time, days int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"departure_city", "arrival_city", "departure_date", "direction", "airline", "price_per_adult_usd"}
	if err := w.Write(header); err != nil {
		return err
	}

	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day).Format("2006-01-02")
		for _, route := range routes {
			// A few fare options per route per day, both directions.
			for i := 0; i < 2+rng.Intn(3); i++ {
				price := route.base * (0.7 + rng.Float64()*0.8)
				row := []string{
					route.origin,
					route.destination,
					date,
					"OUTBOUND",
					airlines[rng.Intn(len(airlines))],
					fmt.Sprintf("%.2f", price),
				}
				if err := w.Write(row); err != nil {
					return err
				}

				price = route.base * (0.7 + rng.Float64()*0.8)
				row = []string{
					route.destination,
					route.origin,
					date,
					"RETURN",
					airlines[rng.Intn(len(airlines))],
					fmt.Sprintf("%.2f", price),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}

	return w.Error()
}

func writeHotels(path string, rng *rand.Rand, start time.Time, days int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"city", "hotel_name", "price_per_night_usd", "rating_out_of_10", "availability_start_date", "availability_end_date"}
	if err := w.Write(header); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	var cities []string
	for _, route := range routes {
		if _, ok := seen[route.destination]; ok {
			continue
		}
		seen[route.destination] = struct{}{}
		cities = append(cities, route.destination)
	}
	sort.Strings(cities)

	availEnd := start.AddDate(0, 0, days+14).Format("2006-01-02")
	for _, city := range cities {
		for _, name := range hotelNames[:4+rng.Intn(len(hotelNames)-4)] {
			price := 80 + rng.Float64()*240

			// Leave some hotels unrated and some without an availability
			// window; both shapes exist in the historical dumps.
			rating := ""
			if rng.Float64() < 0.8 {
				rating = fmt.Sprintf("%.1f", 5+rng.Float64()*5)
			}
			availS, availE := "", ""
			if rng.Float64() < 0.7 {
				availS = start.AddDate(0, 0, -7).Format("2006-01-02")
				availE = availEnd
			}

			row := []string{
				city,
				fmt.Sprintf("%s %s", city, name),
				fmt.Sprintf("%.2f", price),
				rating,
				availS,
				availE,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}
