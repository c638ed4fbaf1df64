package analytics

import (
	"cmp"
	"slices"
)

// Ranking names the cities with the highest and lowest average AQI. Both are
// nil for an empty input.
type Ranking struct {
	Worst *CityStats `json:"worst"`
	Best  *CityStats `json:"best"`
}

// WorstAndBest ranks stats by descending average AQI with a stable sort.
// Ties keep input order: among cities sharing the highest average the first
// one listed is worst, among those sharing the lowest the last one listed is
// best. The returned pointers refer into stats.
func WorstAndBest(stats []CityStats) Ranking {
	if len(stats) == 0 {
		return Ranking{}
	}

	order := make([]int, len(stats))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(stats[b].AvgAQI, stats[a].AvgAQI)
	})

	return Ranking{
		Worst: &stats[order[0]],
		Best:  &stats[order[len(order)-1]],
	}
}
