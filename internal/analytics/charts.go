package analytics

import (
	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/aqi"
	"gonum.org/v1/gonum/floats"
)

// GaugeMax is the top of the AQI gauge scale.
const GaugeMax = 500

// pollutantPalette is zipped positionally with PollutantContributions.
var pollutantPalette = []string{"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6", "#ec4899"}

// Overview is the KPI summary over every reading in the filtered set.
type Overview struct {
	AvgAQI        int `json:"avgAQI"`
	MaxAQI        int `json:"maxAQI"`
	MinAQI        int `json:"minAQI"`
	TotalReadings int `json:"totalReadings"`
}

// Summarize computes the overview; it is all zeros for an empty input.
func Summarize(readings []types.Reading) Overview {
	if len(readings) == 0 {
		return Overview{}
	}

	aqis := make([]float64, len(readings))
	for i, r := range readings {
		aqis[i] = float64(r.AQI)
	}

	return Overview{
		AvgAQI:        meanAQI(readings),
		MaxAQI:        int(floats.Max(aqis)),
		MinAQI:        int(floats.Min(aqis)),
		TotalReadings: len(readings),
	}
}

// Bar is one labelled, colored value of a bar or donut chart.
type Bar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// CityComparison colors each city's average AQI by its band.
func CityComparison(stats []CityStats) []Bar {
	out := make([]Bar, 0, len(stats))
	for _, s := range stats {
		out = append(out, Bar{
			Label: s.CityName,
			Value: s.AvgAQI,
			Color: s.Category().Color(),
		})
	}
	return out
}

// PollutantSeries assigns the fixed pollutant palette by position.
func PollutantSeries(contrib []PollutantContribution) []Bar {
	out := make([]Bar, 0, len(contrib))
	for i, c := range contrib {
		out = append(out, Bar{
			Label: c.Label,
			Value: c.Value,
			Color: pollutantPalette[i%len(pollutantPalette)],
		})
	}
	return out
}

// Gauge places an AQI value on the 0..500 dial.
type Gauge struct {
	Value    int          `json:"value"`
	Percent  float64      `json:"percent"`
	Category aqi.Category `json:"category"`
	Color    string       `json:"color"`
}

// NewGauge builds the gauge for value. Percent is not clamped.
func NewGauge(value int) Gauge {
	c := aqi.ClassifyInt(value)
	return Gauge{
		Value:    value,
		Percent:  float64(value) / GaugeMax * 100,
		Category: c,
		Color:    c.Color(),
	}
}
