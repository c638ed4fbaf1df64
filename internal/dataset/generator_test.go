package dataset

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/aqi"
)

func TestGenerateShape(t *testing.T) {
	tests := []struct {
		name string
		year int
		days int
	}{
		{"leap year", 2024, 366},
		{"common year", 2023, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, err := NewGenerator(tt.year, DefaultSeed).Generate()
			if err != nil {
				t.Fatalf("Generate() returned error: %v", err)
			}

			cities := DefaultCities()
			if len(readings) != tt.days*len(cities) {
				t.Fatalf("Generate() produced %d readings, expected %d", len(readings), tt.days*len(cities))
			}

			for ci, city := range cities {
				block := readings[ci*tt.days : (ci+1)*tt.days]
				for di, r := range block {
					if r.CityID != city.ID {
						t.Fatalf("reading %d of block %d has city %q, expected %q", di, ci, r.CityID, city.ID)
					}
					if di > 0 && block[di-1].Date >= r.Date {
						t.Fatalf("dates not ascending at %s", r.Date)
					}
				}
				if !strings.HasSuffix(block[0].Date, "-01-01") || !strings.HasSuffix(block[len(block)-1].Date, "-12-31") {
					t.Errorf("city %s covers %s..%s, expected a full year", city.ID, block[0].Date, block[len(block)-1].Date)
				}
			}
		})
	}
}

func TestGenerateCategoryMatchesAQI(t *testing.T) {
	readings, err := NewGenerator(DefaultYear, DefaultSeed).Generate()
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	for _, r := range readings {
		if r.Category != aqi.ClassifyInt(r.AQI) {
			t.Fatalf("reading %s has category %v for AQI %d", r.ID, r.Category, r.AQI)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("reading failed validation: %v", err)
		}
		if r.ID != "reading-"+r.CityID+"-"+r.Date {
			t.Fatalf("reading id %q does not follow reading-<city>-<date>", r.ID)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := NewGenerator(DefaultYear, 42).Generate()
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	b, err := NewGenerator(DefaultYear, 42).Generate()
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}

	c, err := NewGenerator(DefaultYear, 43).Generate()
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical datasets")
	}
}

func TestGenerateMissingBaseline(t *testing.T) {
	g := NewGenerator(DefaultYear, DefaultSeed)
	g.Cities = append(g.Cities, types.City{ID: "city-9", Name: "Nowhere"})
	if _, err := g.Generate(); err == nil {
		t.Error("expected error for city without baseline")
	}
}

func TestGenerateDuplicateCity(t *testing.T) {
	g := NewGenerator(DefaultYear, DefaultSeed)
	g.Cities = append(g.Cities, g.Cities[0])
	if _, err := g.Generate(); err == nil {
		t.Error("expected error for duplicate city id")
	}
}

func TestStore(t *testing.T) {
	s, err := NewStore(NewGenerator(DefaultYear, DefaultSeed))
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}

	if s.Len() != 366*5 {
		t.Errorf("Len() = %d, expected %d", s.Len(), 366*5)
	}
	if s.Year() != DefaultYear {
		t.Errorf("Year() = %d, expected %d", s.Year(), DefaultYear)
	}

	city, ok := s.City("city-4")
	if !ok || city.Name != "London" {
		t.Errorf("City(city-4) = %+v, %v", city, ok)
	}
	if _, ok := s.City("city-0"); ok {
		t.Error("City(city-0) should not resolve")
	}

	readings := s.Readings()
	readings[0].AQI = -1
	if s.Readings()[0].AQI == -1 {
		t.Error("Readings() exposed the store's backing slice")
	}
}

func TestGenerateRoundsConcentrations(t *testing.T) {
	readings, err := NewGenerator(2024, 11).Generate()
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	onGrid := func(v float64, places int) bool {
		scaled := v * math.Pow(10, float64(places))
		return math.Abs(scaled-math.Round(scaled)) < 1e-6
	}

	for _, r := range readings {
		for _, v := range []float64{r.PM25, r.PM10, r.NO2, r.SO2, r.O3} {
			if !onGrid(v, 1) {
				t.Fatalf("%s: %v has more than one decimal", r.ID, v)
			}
		}
		if !onGrid(r.CO, 2) {
			t.Fatalf("%s: CO %v has more than two decimals", r.ID, r.CO)
		}
	}
}
