package analytics

import (
	"fmt"

	"github.com/chrissnell/airquality/internal/filter"
)

// InsightKind tags an insight for presentation.
type InsightKind string

const (
	InsightWorst   InsightKind = "worst"
	InsightBest    InsightKind = "best"
	InsightDataset InsightKind = "dataset"
)

// Insight is a one-line narrative finding.
type Insight struct {
	Kind   InsightKind `json:"kind"`
	Title  string      `json:"title"`
	Detail string      `json:"detail"`
}

// BuildInsights describes the worst and best cities (when ranked) and the
// size of the analysed set.
func BuildInsights(r Ranking, o Overview, sel filter.Selection) []Insight {
	var out []Insight

	if r.Worst != nil {
		out = append(out, Insight{
			Kind:   InsightWorst,
			Title:  fmt.Sprintf("%s has the highest pollution levels", r.Worst.CityName),
			Detail: fmt.Sprintf("Average AQI of %d with %d unhealthy days recorded", r.Worst.AvgAQI, r.Worst.UnhealthyDays),
		})
	}
	if r.Best != nil {
		out = append(out, Insight{
			Kind:   InsightBest,
			Title:  fmt.Sprintf("%s maintains the best air quality", r.Best.CityName),
			Detail: fmt.Sprintf("Average AQI of %d with %d good air quality days", r.Best.AvgAQI, r.Best.GoodDays),
		})
	}

	out = append(out, Insight{
		Kind:  InsightDataset,
		Title: "Dataset Overview",
		Detail: fmt.Sprintf("Analyzing %d readings across %d cities from %s to %s",
			o.TotalReadings, len(sel.CityIDs), sel.DateRange.Start, sel.DateRange.End),
	})

	return out
}
