package analytics

import (
	"fmt"

	"github.com/chrissnell/airquality/internal/types"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// heatMapScale holds the five colors of the normalized heat map scale, lowest
// fifth first.
var heatMapScale = []string{"#00e400", "#ffff00", "#ff7e00", "#ff0000", "#8f3f97"}

// HeatMapCell is one city-month average.
type HeatMapCell struct {
	Label     string `json:"label"`
	Month     string `json:"month"`
	Value     int    `json:"value"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// HeatMap is a city × month grid of average AQI.
type HeatMap struct {
	RowLabels    []string        `json:"rowLabels"`
	ColumnLabels []string        `json:"columnLabels"`
	Rows         [][]HeatMapCell `json:"rows"`
	Min          int             `json:"min"`
	Max          int             `json:"max"`
}

// BuildHeatMap lays out one row per city ID (in the given order) and one
// column per month of year. Months without readings hold 0. Unknown city IDs
// get an empty row label.
func BuildHeatMap(readings []types.Reading, cityIDs []string, cities []types.City, year int) HeatMap {
	names := make(map[string]string, len(cities))
	for _, c := range cities {
		names[c.ID] = c.Name
	}

	type key struct{ city, month string }
	groups := make(map[key][]types.Reading)
	for _, r := range readings {
		k := key{r.CityID, r.Month()}
		groups[k] = append(groups[k], r)
	}

	hm := HeatMap{
		RowLabels:    make([]string, 0, len(cityIDs)),
		ColumnLabels: append([]string(nil), monthLabels...),
		Rows:         make([][]HeatMapCell, 0, len(cityIDs)),
	}

	first := true
	for _, id := range cityIDs {
		hm.RowLabels = append(hm.RowLabels, names[id])

		row := make([]HeatMapCell, 0, len(monthLabels))
		for m := 1; m <= len(monthLabels); m++ {
			month := fmt.Sprintf("%04d-%02d", year, m)
			v := meanAQI(groups[key{id, month}])
			row = append(row, HeatMapCell{
				Label: names[id] + " - " + month,
				Month: month,
				Value: v,
			})

			if first || v < hm.Min {
				hm.Min = v
			}
			if first || v > hm.Max {
				hm.Max = v
			}
			first = false
		}
		hm.Rows = append(hm.Rows, row)
	}

	for i := range hm.Rows {
		for j := range hm.Rows[i] {
			cell := &hm.Rows[i][j]
			cell.Color = HeatMapColor(cell.Value, hm.Min, hm.Max)
			cell.TextColor = heatMapTextColor(cell.Value, hm.Min, hm.Max)
		}
	}

	return hm
}

// HeatMapColor picks a color from the value's position between min and max,
// in fifths.
func HeatMapColor(value, min, max int) string {
	span := float64(max - min)
	if span == 0 {
		span = 1
	}
	normalized := float64(value-min) / span

	switch {
	case normalized <= 0.2:
		return heatMapScale[0]
	case normalized <= 0.4:
		return heatMapScale[1]
	case normalized <= 0.6:
		return heatMapScale[2]
	case normalized <= 0.8:
		return heatMapScale[3]
	default:
		return heatMapScale[4]
	}
}

// Cells in the top 40% of the range get white text.
func heatMapTextColor(value, min, max int) string {
	if float64(value) > float64(max-min)*0.6+float64(min) {
		return "#ffffff"
	}
	return "#000000"
}
