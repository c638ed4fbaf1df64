// Package aqi provides the Air Quality Index classification shared by the
// dataset generator and every presentation helper, plus the pollutant
// sub-index math used to derive a composite AQI from concentrations.
package aqi

import (
	"fmt"
	"math"
)

// Category is one of the six ordered AQI bands. The zero value is Good.
type Category int

const (
	Good Category = iota
	Moderate
	UnhealthySensitive
	Unhealthy
	VeryUnhealthy
	Hazardous
)

var categoryNames = [...]string{
	Good:               "Good",
	Moderate:           "Moderate",
	UnhealthySensitive: "Unhealthy for Sensitive Groups",
	Unhealthy:          "Unhealthy",
	VeryUnhealthy:      "Very Unhealthy",
	Hazardous:          "Hazardous",
}

var categoryColors = [...]string{
	Good:               "#00e400", // Green
	Moderate:           "#ffff00", // Yellow
	UnhealthySensitive: "#ff7e00", // Orange
	Unhealthy:          "#ff0000", // Red
	VeryUnhealthy:      "#8f3f97", // Purple
	Hazardous:          "#7e0023", // Maroon
}

// Categories returns every band in ascending order of severity.
func Categories() []Category {
	return []Category{Good, Moderate, UnhealthySensitive, Unhealthy, VeryUnhealthy, Hazardous}
}

// Classify maps an AQI value to its band. Upper breakpoints are closed, so 50
// is Good and 50.5 is Moderate.
func Classify(aqi float64) Category {
	switch {
	case aqi <= 50:
		return Good
	case aqi <= 100:
		return Moderate
	case aqi <= 150:
		return UnhealthySensitive
	case aqi <= 200:
		return Unhealthy
	case aqi <= 300:
		return VeryUnhealthy
	default:
		return Hazardous
	}
}

// ClassifyInt is Classify for integer AQI values.
func ClassifyInt(aqi int) Category {
	return Classify(float64(aqi))
}

// ParseCategory returns the band with the given display name.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return Good, fmt.Errorf("unknown AQI category %q", name)
}

// Valid reports whether c is one of the six bands.
func (c Category) Valid() bool {
	return c >= Good && c <= Hazardous
}

// String returns the display name of the band.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Color returns the standard display color for the band.
func (c Category) Color() string {
	if !c.Valid() {
		return ""
	}
	return categoryColors[c]
}

// MarshalText encodes the band as its display name.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid AQI category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText decodes a display name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Concentrations holds one day's pollutant levels. CO is in mg/m³, every
// other pollutant in µg/m³.
type Concentrations struct {
	PM25 float64
	PM10 float64
	NO2  float64
	SO2  float64
	O3   float64
	CO   float64
}

// PM25SubIndex converts a PM2.5 concentration (µg/m³) to its sub-index. The
// top band is extrapolated without a cap.
func PM25SubIndex(pm float64) float64 {
	if pm < 0 {
		return 0
	}

	var cLow, cHigh, iLow, iHigh float64

	switch {
	case pm <= 12.0:
		cLow, cHigh = 0, 12.0
		iLow, iHigh = 0, 50
	case pm <= 35.4:
		cLow, cHigh = 12.0, 35.4
		iLow, iHigh = 50, 100
	case pm <= 55.4:
		cLow, cHigh = 35.4, 55.4
		iLow, iHigh = 100, 150
	case pm <= 150.4:
		cLow, cHigh = 55.4, 150.4
		iLow, iHigh = 150, 200
	case pm <= 250.4:
		cLow, cHigh = 150.4, 250.4
		iLow, iHigh = 200, 300
	default:
		cLow, cHigh = 250.4, 400.4
		iLow, iHigh = 300, 500
	}

	return interpolate(pm, cLow, cHigh, iLow, iHigh)
}

// PM10SubIndex converts a PM10 concentration (µg/m³) to its sub-index. Levels
// above 424 µg/m³ saturate at 300.
func PM10SubIndex(pm float64) float64 {
	if pm < 0 {
		return 0
	}

	var cLow, cHigh, iLow, iHigh float64

	switch {
	case pm <= 54:
		cLow, cHigh = 0, 54
		iLow, iHigh = 0, 50
	case pm <= 154:
		cLow, cHigh = 54, 154
		iLow, iHigh = 50, 100
	case pm <= 254:
		cLow, cHigh = 154, 254
		iLow, iHigh = 100, 150
	case pm <= 354:
		cLow, cHigh = 254, 354
		iLow, iHigh = 150, 200
	case pm <= 424:
		cLow, cHigh = 354, 424
		iLow, iHigh = 200, 300
	default:
		return 300
	}

	return interpolate(pm, cLow, cHigh, iLow, iHigh)
}

// Gas sub-indices are linear against a reference level.
func NO2SubIndex(no2 float64) float64 { return no2 / 100 * 100 }
func SO2SubIndex(so2 float64) float64 { return so2 / 75 * 100 }
func O3SubIndex(o3 float64) float64   { return o3 / 100 * 100 }
func COSubIndex(co float64) float64   { return co / 15 * 300 }

// Composite returns the rounded maximum of all six sub-indices.
func Composite(c Concentrations) int {
	worst := math.Max(PM25SubIndex(c.PM25), PM10SubIndex(c.PM10))
	worst = math.Max(worst, NO2SubIndex(c.NO2))
	worst = math.Max(worst, SO2SubIndex(c.SO2))
	worst = math.Max(worst, O3SubIndex(c.O3))
	worst = math.Max(worst, COSubIndex(c.CO))
	if worst < 0 {
		return 0
	}
	return int(math.Round(worst))
}

// I = (I_high - I_low) / (C_high - C_low) * (C - C_low) + I_low
func interpolate(c, cLow, cHigh, iLow, iHigh float64) float64 {
	return ((iHigh-iLow)/(cHigh-cLow))*(c-cLow) + iLow
}
