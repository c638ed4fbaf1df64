package analytics

import (
	"github.com/chrissnell/airquality/internal/types"
	"gonum.org/v1/gonum/stat"
)

// coDisplayScale brings CO (mg/m³) to the magnitude of the µg/m³ pollutants.
// The scaled value is what gets reported.
const coDisplayScale = 100

// PollutantContribution is a pollutant's rounded mean over a reading set.
type PollutantContribution struct {
	Pollutant types.Pollutant `json:"key"`
	Label     string          `json:"pollutant"`
	Value     int             `json:"value"`
}

// PollutantContributions returns the mean of each pollutant in display order
// (PM2.5, PM10, NO₂, SO₂, O₃, CO), each rounded to an integer, with CO scaled
// by 100 before averaging. An empty input yields an empty result.
func PollutantContributions(readings []types.Reading) []PollutantContribution {
	if len(readings) == 0 {
		return []PollutantContribution{}
	}

	pollutants := types.Pollutants()
	out := make([]PollutantContribution, 0, len(pollutants))
	vals := make([]float64, len(readings))

	for _, p := range pollutants {
		scale := 1.0
		if p == types.CO {
			scale = coDisplayScale
		}
		for i, r := range readings {
			vals[i] = r.Value(p) * scale
		}
		out = append(out, PollutantContribution{
			Pollutant: p,
			Label:     p.Label(),
			Value:     roundInt(stat.Mean(vals, nil)),
		})
	}
	return out
}
