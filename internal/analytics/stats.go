// Package analytics derives per-city statistics, rankings, monthly trends
// and pollutant breakdowns from a filtered set of readings. Every function is
// pure: inputs are never modified and results are freshly allocated.
package analytics

import (
	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/aqi"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Good and moderate day buckets use the same closed upper bounds as the
// Good and Moderate AQI bands.
const (
	goodMax     = 50
	moderateMax = 100
)

// CityStats summarizes one city's readings.
type CityStats struct {
	CityID        string  `json:"cityId"`
	CityName      string  `json:"cityName"`
	AvgAQI        int     `json:"avgAQI"`
	MaxAQI        int     `json:"maxAQI"`
	MinAQI        int     `json:"minAQI"`
	AvgPM25       float64 `json:"avgPM25"`
	AvgPM10       float64 `json:"avgPM10"`
	AvgNO2        float64 `json:"avgNO2"`
	AvgSO2        float64 `json:"avgSO2"`
	AvgO3         float64 `json:"avgO3"`
	AvgCO         float64 `json:"avgCO"`
	GoodDays      int     `json:"goodDays"`
	ModerateDays  int     `json:"moderateDays"`
	UnhealthyDays int     `json:"unhealthyDays"`
}

// Category classifies the city's average AQI.
func (s CityStats) Category() aqi.Category {
	return aqi.ClassifyInt(s.AvgAQI)
}

// CalculateCityStats returns one record per city, in the order given. A city
// with no readings gets an all-zero record.
func CalculateCityStats(readings []types.Reading, cities []types.City) []CityStats {
	byCity := make(map[string][]types.Reading, len(cities))
	for _, r := range readings {
		byCity[r.CityID] = append(byCity[r.CityID], r)
	}

	out := make([]CityStats, 0, len(cities))
	for _, city := range cities {
		out = append(out, cityStats(city, byCity[city.ID]))
	}
	return out
}

func cityStats(city types.City, readings []types.Reading) CityStats {
	s := CityStats{CityID: city.ID, CityName: city.Name}
	if len(readings) == 0 {
		return s
	}

	aqis := make([]float64, len(readings))
	for i, r := range readings {
		aqis[i] = float64(r.AQI)

		switch {
		case r.AQI <= goodMax:
			s.GoodDays++
		case r.AQI <= moderateMax:
			s.ModerateDays++
		default:
			s.UnhealthyDays++
		}
	}

	s.AvgAQI = roundInt(stat.Mean(aqis, nil))
	s.MaxAQI = int(floats.Max(aqis))
	s.MinAQI = int(floats.Min(aqis))
	s.AvgPM25 = scalar.Round(meanOf(readings, types.PM25), 1)
	s.AvgPM10 = scalar.Round(meanOf(readings, types.PM10), 1)
	s.AvgNO2 = scalar.Round(meanOf(readings, types.NO2), 1)
	s.AvgSO2 = scalar.Round(meanOf(readings, types.SO2), 1)
	s.AvgO3 = scalar.Round(meanOf(readings, types.O3), 1)
	s.AvgCO = scalar.Round(meanOf(readings, types.CO), 2)

	return s
}

// meanOf must not be called with an empty slice.
func meanOf(readings []types.Reading, p types.Pollutant) float64 {
	vals := make([]float64, len(readings))
	for i, r := range readings {
		vals[i] = r.Value(p)
	}
	return stat.Mean(vals, nil)
}

// roundInt rounds half away from zero.
func roundInt(x float64) int {
	return int(scalar.Round(x, 0))
}

// meanAQI returns the rounded mean AQI, or 0 when readings is empty.
func meanAQI(readings []types.Reading) int {
	if len(readings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range readings {
		sum += r.AQI
	}
	return roundInt(float64(sum) / float64(len(readings)))
}
