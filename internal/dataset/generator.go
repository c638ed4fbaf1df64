// Package dataset builds the fixed, in-memory set of cities and daily
// air-quality readings that every analytics call is computed from.
package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/aqi"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// DefaultYear is the calendar year generated when none is configured.
	DefaultYear = 2024
	// DefaultSeed makes the default dataset reproducible across runs.
	DefaultSeed uint64 = 20240101
)

// DefaultCities returns the five reference cities in generation order.
func DefaultCities() []types.City {
	return []types.City{
		{ID: "city-1", Name: "Los Angeles", Country: "USA", Latitude: 34.0522, Longitude: -118.2437},
		{ID: "city-2", Name: "New Delhi", Country: "India", Latitude: 28.6139, Longitude: 77.2090},
		{ID: "city-3", Name: "Beijing", Country: "China", Latitude: 39.9042, Longitude: 116.4074},
		{ID: "city-4", Name: "London", Country: "UK", Latitude: 51.5074, Longitude: -0.1278},
		{ID: "city-5", Name: "Tokyo", Country: "Japan", Latitude: 35.6762, Longitude: 139.6503},
	}
}

// DefaultBaselines returns the typical pollutant levels of the default
// cities, keyed by city ID.
func DefaultBaselines() map[string]aqi.Concentrations {
	return map[string]aqi.Concentrations{
		"city-1": {PM25: 25, PM10: 45, NO2: 35, SO2: 15, O3: 55, CO: 0.8},
		"city-2": {PM25: 95, PM10: 180, NO2: 65, SO2: 25, O3: 45, CO: 1.5},
		"city-3": {PM25: 75, PM10: 140, NO2: 55, SO2: 30, O3: 50, CO: 1.2},
		"city-4": {PM25: 18, PM10: 35, NO2: 40, SO2: 12, O3: 48, CO: 0.6},
		"city-5": {PM25: 20, PM10: 38, NO2: 30, SO2: 10, O3: 42, CO: 0.7},
	}
}

// Generator synthesizes one reading per city per day of Year. Levels follow
// a yearly sine around each city's baseline with seeded multiplicative noise,
// so the same Seed always yields the same dataset.
type Generator struct {
	Year      int
	Seed      uint64
	Cities    []types.City
	Baselines map[string]aqi.Concentrations
}

// NewGenerator returns a generator for the default cities and baselines.
func NewGenerator(year int, seed uint64) *Generator {
	return &Generator{
		Year:      year,
		Seed:      seed,
		Cities:    DefaultCities(),
		Baselines: DefaultBaselines(),
	}
}

// Generate produces the readings ordered by city (in Cities order) and then
// by ascending date.
func (g *Generator) Generate() ([]types.Reading, error) {
	if g.Year < 1 || g.Year > 9999 {
		return nil, fmt.Errorf("year %d out of range", g.Year)
	}

	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))

	start := time.Date(g.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(g.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1

	readings := make([]types.Reading, 0, days*len(g.Cities))
	seen := make(map[string]bool, len(g.Cities))

	for _, city := range g.Cities {
		if seen[city.ID] {
			return nil, fmt.Errorf("duplicate city id %q", city.ID)
		}
		seen[city.ID] = true

		baseline, ok := g.Baselines[city.ID]
		if !ok {
			return nil, fmt.Errorf("no pollution baseline for city %q", city.ID)
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dayOfYear := int(d.Sub(start).Hours() / 24)
			readings = append(readings, dailyReading(city.ID, d, dayOfYear, baseline, rng))
		}
	}

	return readings, nil
}

func dailyReading(cityID string, day time.Time, dayOfYear int, baseline aqi.Concentrations, rng *rand.Rand) types.Reading {
	seasonal := 1 + 0.3*math.Sin(float64(dayOfYear)/365*2*math.Pi)
	noise := 0.7 + rng.Float64()*0.6

	// Ozone peaks opposite to the combustion pollutants.
	c := aqi.Concentrations{
		PM25: math.Max(0, baseline.PM25*seasonal*noise),
		PM10: math.Max(0, baseline.PM10*seasonal*noise),
		NO2:  math.Max(0, baseline.NO2*seasonal*noise),
		SO2:  math.Max(0, baseline.SO2*seasonal*noise),
		O3:   math.Max(0, baseline.O3*(2-seasonal)*noise),
		CO:   math.Max(0, baseline.CO*seasonal*noise),
	}

	index := aqi.Composite(c)
	date := day.Format(types.DateLayout)

	return types.Reading{
		ID:       fmt.Sprintf("reading-%s-%s", cityID, date),
		CityID:   cityID,
		Date:     date,
		PM25:     scalar.Round(c.PM25, 1),
		PM10:     scalar.Round(c.PM10, 1),
		NO2:      scalar.Round(c.NO2, 1),
		SO2:      scalar.Round(c.SO2, 1),
		O3:       scalar.Round(c.O3, 1),
		CO:       scalar.Round(c.CO, 2),
		AQI:      index,
		Category: aqi.ClassifyInt(index),
	}
}
