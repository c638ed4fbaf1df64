package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/airquality/pkg/aqi"
)

// DateLayout is the ISO calendar-date layout used by every Reading.
const DateLayout = "2006-01-02"

// ErrInvalidReading is returned by Reading.Validate.
var ErrInvalidReading = errors.New("invalid reading")

// City is immutable reference data. Latitude and Longitude are informational.
type City struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Country   string  `json:"country" yaml:"country"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Reading is one city's pollutant levels and derived AQI for one calendar day.
// CO is in mg/m³, every other pollutant in µg/m³.
type Reading struct {
	ID       string       `json:"id"`
	CityID   string       `json:"cityId"`
	Date     string       `json:"date"`
	PM25     float64      `json:"pm25"`
	PM10     float64      `json:"pm10"`
	NO2      float64      `json:"no2"`
	SO2      float64      `json:"so2"`
	O3       float64      `json:"o3"`
	CO       float64      `json:"co"`
	AQI      int          `json:"aqi"`
	Category aqi.Category `json:"aqiCategory"`
}

// Month returns the YYYY-MM prefix of the reading's date.
func (r Reading) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

// Value returns the concentration of p.
func (r Reading) Value(p Pollutant) float64 {
	switch p {
	case PM25:
		return r.PM25
	case PM10:
		return r.PM10
	case NO2:
		return r.NO2
	case SO2:
		return r.SO2
	case O3:
		return r.O3
	case CO:
		return r.CO
	default:
		return 0
	}
}

// Validate checks that concentrations and AQI are non-negative, the date is a
// real calendar date and the category agrees with the AQI.
func (r Reading) Validate() error {
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w %s: malformed date %q", ErrInvalidReading, r.ID, r.Date)
	}
	for _, p := range Pollutants() {
		if r.Value(p) < 0 {
			return fmt.Errorf("%w %s: negative %s", ErrInvalidReading, r.ID, p.Label())
		}
	}
	if r.AQI < 0 {
		return fmt.Errorf("%w %s: negative AQI %d", ErrInvalidReading, r.ID, r.AQI)
	}
	if expected := aqi.ClassifyInt(r.AQI); r.Category != expected {
		return fmt.Errorf("%w %s: category %q does not match AQI %d (%q)", ErrInvalidReading, r.ID, r.Category, r.AQI, expected)
	}
	return nil
}
