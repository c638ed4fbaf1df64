package analytics

import (
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/types"
)

// Dashboard bundles every aggregate computed for one selection.
type Dashboard struct {
	Selection       filter.Selection        `json:"selection"`
	Overview        Overview                `json:"overview"`
	Gauge           Gauge                   `json:"gauge"`
	CityStats       []CityStats             `json:"cityStats"`
	Ranking         Ranking                 `json:"ranking"`
	Monthly         []MonthlyAggregate      `json:"monthly"`
	Trend           []Point                 `json:"trend"`
	Comparison      []Bar                   `json:"comparison"`
	Pollutants      []PollutantContribution `json:"pollutants"`
	PollutantSeries []Bar                   `json:"pollutantSeries"`
	HeatMap         HeatMap                 `json:"heatMap"`
	Insights        []Insight               `json:"insights"`
}

// BuildDashboard filters readings by sel and recomputes every aggregate from
// scratch. year fixes the heat map's columns.
func BuildDashboard(readings []types.Reading, cities []types.City, sel filter.Selection, year int) Dashboard {
	filtered := filter.Apply(readings, sel)

	d := Dashboard{
		Selection: sel,
		Overview:  Summarize(filtered),
		CityStats: CalculateCityStats(filtered, sel.SelectedCities(cities)),
		Monthly:   AggregateByMonth(filtered),
		HeatMap:   BuildHeatMap(filtered, sel.CityIDs, cities, year),
	}

	d.Gauge = NewGauge(d.Overview.AvgAQI)
	d.Ranking = WorstAndBest(d.CityStats)
	d.Trend = MonthlyTrend(d.Monthly)
	d.Comparison = CityComparison(d.CityStats)
	d.Pollutants = PollutantContributions(filtered)
	d.PollutantSeries = PollutantSeries(d.Pollutants)
	d.Insights = BuildInsights(d.Ranking, d.Overview, sel)

	return d
}
