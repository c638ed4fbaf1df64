package analytics

import (
	"slices"
	"time"

	"github.com/chrissnell/airquality/internal/types"
)

// MonthlyAggregate is the mean AQI of the readings in one YYYY-MM month.
type MonthlyAggregate struct {
	Month  string `json:"month"`
	AvgAQI int    `json:"avgAQI"`
	Count  int    `json:"count"`
}

// AggregateByMonth groups readings by the month prefix of their date and
// returns the groups in ascending month order.
func AggregateByMonth(readings []types.Reading) []MonthlyAggregate {
	groups := make(map[string][]types.Reading)
	for _, r := range readings {
		groups[r.Month()] = append(groups[r.Month()], r)
	}

	months := make([]string, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	slices.Sort(months)

	out := make([]MonthlyAggregate, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyAggregate{
			Month:  m,
			AvgAQI: meanAQI(groups[m]),
			Count:  len(groups[m]),
		})
	}
	return out
}

// Point is one labelled value of a line series.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// MonthlyTrend labels each monthly aggregate with its short month name.
func MonthlyTrend(monthly []MonthlyAggregate) []Point {
	out := make([]Point, 0, len(monthly))
	for _, m := range monthly {
		out = append(out, Point{Label: shortMonth(m.Month), Value: m.AvgAQI})
	}
	return out
}

func shortMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("Jan")
}
