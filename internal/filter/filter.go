// Package filter holds the user's selection (cities, date range, pollutant of
// interest) and applies it to the reading set.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chrissnell/airquality/internal/types"
)

var (
	ErrMalformedDate = errors.New("malformed date")
	ErrInvertedRange = errors.New("date range start is after end")
	ErrUnknownCity   = errors.New("unknown city")
	ErrUnknownMetric = errors.New("unknown pollutant selector")
)

// SelectorAQI selects the composite index rather than a single pollutant.
const SelectorAQI = "aqi"

// DateRange is an inclusive range of ISO calendar dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseDateRange validates both bounds as YYYY-MM-DD calendar dates and
// rejects a start later than the end.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(types.DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q", ErrMalformedDate, start)
	}
	e, err := time.Parse(types.DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q", ErrMalformedDate, end)
	}
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

// YearRange covers every day of year.
func YearRange(year int) DateRange {
	return DateRange{
		Start: fmt.Sprintf("%04d-01-01", year),
		End:   fmt.Sprintf("%04d-12-31", year),
	}
}

// Contains reports whether date falls within the range, bounds included.
// ISO dates sort lexicographically in calendar order.
func (d DateRange) Contains(date string) bool {
	return d.Start <= date && date <= d.End
}

// Selection is the filter state consumed by the analytics layer. Pollutant
// is informational and never gates which aggregates are computed.
type Selection struct {
	CityIDs   []string  `json:"cities"`
	DateRange DateRange `json:"dateRange"`
	Pollutant string    `json:"pollutant"`
}

// NewSelection selects the first city over year, the dashboard's initial state.
func NewSelection(cities []types.City, year int) Selection {
	sel := Selection{
		CityIDs:   []string{},
		DateRange: YearRange(year),
		Pollutant: SelectorAQI,
	}
	if len(cities) > 0 {
		sel.CityIDs = append(sel.CityIDs, cities[0].ID)
	}
	return sel
}

// Validate checks that every selected city is known and the pollutant
// selector is recognised. An empty city set is valid.
func (s Selection) Validate(cities []types.City) error {
	for _, id := range s.CityIDs {
		if !slices.ContainsFunc(cities, func(c types.City) bool { return c.ID == id }) {
			return fmt.Errorf("%w: %q", ErrUnknownCity, id)
		}
	}
	if _, err := ParsePollutantSelector(s.Pollutant); err != nil {
		return err
	}
	return nil
}

// Has reports whether the city is selected.
func (s Selection) Has(cityID string) bool {
	return slices.Contains(s.CityIDs, cityID)
}

// ToggleCity removes cityID when selected, otherwise appends it.
func (s Selection) ToggleCity(cityID string) Selection {
	out := s
	if s.Has(cityID) {
		out.CityIDs = slices.DeleteFunc(slices.Clone(s.CityIDs), func(id string) bool { return id == cityID })
	} else {
		out.CityIDs = append(slices.Clone(s.CityIDs), cityID)
	}
	return out
}

// ToggleAll selects every city, or collapses back to the first city when all
// are already selected.
func (s Selection) ToggleAll(cities []types.City) Selection {
	out := s
	if len(cities) > 0 && len(s.CityIDs) == len(cities) {
		out.CityIDs = []string{cities[0].ID}
		return out
	}
	out.CityIDs = make([]string, 0, len(cities))
	for _, c := range cities {
		out.CityIDs = append(out.CityIDs, c.ID)
	}
	return out
}

// SelectedCities returns the known cities that are selected, in the order of
// the cities slice.
func (s Selection) SelectedCities(cities []types.City) []types.City {
	out := make([]types.City, 0, len(s.CityIDs))
	for _, c := range cities {
		if s.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Apply returns the readings of selected cities dated within the range,
// preserving input order.
func Apply(readings []types.Reading, s Selection) []types.Reading {
	selected := make(map[string]bool, len(s.CityIDs))
	for _, id := range s.CityIDs {
		selected[id] = true
	}

	out := make([]types.Reading, 0)
	for _, r := range readings {
		if selected[r.CityID] && s.DateRange.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// ParsePollutantSelector accepts "aqi" (or empty) or a pollutant key.
func ParsePollutantSelector(sel string) (PollutantSelector, error) {
	if sel == "" || sel == SelectorAQI {
		return PollutantSelector{}, nil
	}
	p, err := types.ParsePollutant(sel)
	if err != nil {
		return PollutantSelector{}, fmt.Errorf("%w: %q", ErrUnknownMetric, sel)
	}
	return PollutantSelector{Pollutant: p, Single: true}, nil
}

// PollutantSelector is either the composite AQI or one pollutant.
type PollutantSelector struct {
	Pollutant types.Pollutant
	Single    bool
}

// Label is the selector's display label.
func (p PollutantSelector) Label() string {
	if !p.Single {
		return "AQI (Overall)"
	}
	return p.Pollutant.Label()
}
