package app

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chrissnell/airquality/internal/dataset"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/pkg/config"
)

func TestBuildStoreDefaults(t *testing.T) {
	store, err := BuildStore(&config.ConfigData{})
	if err != nil {
		t.Fatalf("BuildStore() returned error: %v", err)
	}
	if store.Year() != dataset.DefaultYear {
		t.Errorf("Year() = %d, expected %d", store.Year(), dataset.DefaultYear)
	}
	if len(store.Cities()) != 5 || store.Len() != 5*366 {
		t.Errorf("store has %d cities and %d readings", len(store.Cities()), store.Len())
	}
}

func TestBuildStoreConfiguredCities(t *testing.T) {
	cfg := &config.ConfigData{
		Dataset: config.DatasetData{Year: 2023, Seed: 99},
		Cities: []config.CityData{
			{ID: "city-4", Name: "London"},
			{ID: "city-9", Name: "Reykjavik", Baseline: &config.BaselineData{PM25: 5, PM10: 10, NO2: 12, SO2: 2, O3: 40, CO: 0.2}},
		},
	}

	store, err := BuildStore(cfg)
	if err != nil {
		t.Fatalf("BuildStore() returned error: %v", err)
	}
	if store.Len() != 2*365 {
		t.Errorf("Len() = %d, expected %d", store.Len(), 2*365)
	}
	if c, ok := store.City("city-9"); !ok || c.Name != "Reykjavik" {
		t.Errorf("City(city-9) = %+v, %v", c, ok)
	}

	cfg.Cities = append(cfg.Cities, config.CityData{ID: "city-10", Name: "Nowhere"})
	if _, err := BuildStore(cfg); err == nil {
		t.Error("expected error for a city without a baseline")
	}
}

func TestDefaultSelection(t *testing.T) {
	store, err := BuildStore(&config.ConfigData{})
	if err != nil {
		t.Fatalf("BuildStore() returned error: %v", err)
	}

	sel, err := DefaultSelection(config.DefaultsData{}, store)
	if err != nil {
		t.Fatalf("DefaultSelection() returned error: %v", err)
	}
	expected := filter.Selection{
		CityIDs:   []string{"city-1"},
		DateRange: filter.DateRange{Start: "2024-01-01", End: "2024-12-31"},
		Pollutant: filter.SelectorAQI,
	}
	if !reflect.DeepEqual(sel, expected) {
		t.Errorf("DefaultSelection() = %+v, expected %+v", sel, expected)
	}

	sel, err = DefaultSelection(config.DefaultsData{Cities: []string{"city-2", "city-3"}, End: "2024-03-31", Pollutant: "pm10"}, store)
	if err != nil {
		t.Fatalf("DefaultSelection() returned error: %v", err)
	}
	if len(sel.CityIDs) != 2 || sel.DateRange.End != "2024-03-31" || sel.Pollutant != "pm10" {
		t.Errorf("DefaultSelection() = %+v", sel)
	}

	tests := []struct {
		name     string
		defaults config.DefaultsData
		want     error
	}{
		{"unknown city", config.DefaultsData{Cities: []string{"city-77"}}, filter.ErrUnknownCity},
		{"malformed date", config.DefaultsData{Start: "01/01/2024"}, filter.ErrMalformedDate},
		{"inverted", config.DefaultsData{Start: "2024-12-01", End: "2024-01-01"}, filter.ErrInvertedRange},
		{"unknown pollutant", config.DefaultsData{Pollutant: "pollen"}, filter.ErrUnknownMetric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DefaultSelection(tt.defaults, store); !errors.Is(err, tt.want) {
				t.Errorf("DefaultSelection() error = %v, expected %v", err, tt.want)
			}
		})
	}
}
