package types

import "fmt"

// Pollutant identifies one of the six measured pollutants. The declaration
// order is the display order used by every series in the dashboard.
type Pollutant int

const (
	PM25 Pollutant = iota
	PM10
	NO2
	SO2
	O3
	CO
)

type pollutantInfo struct {
	key         string
	label       string
	unit        string
	description string
}

var pollutantTable = [...]pollutantInfo{
	PM25: {"pm25", "PM2.5", "µg/m³", "Fine particulate matter"},
	PM10: {"pm10", "PM10", "µg/m³", "Coarse particulate matter"},
	NO2:  {"no2", "NO₂", "µg/m³", "Nitrogen dioxide"},
	SO2:  {"so2", "SO₂", "µg/m³", "Sulfur dioxide"},
	O3:   {"o3", "O₃", "µg/m³", "Ozone"},
	CO:   {"co", "CO", "mg/m³", "Carbon monoxide"},
}

// Pollutants returns all pollutants in display order.
func Pollutants() []Pollutant {
	return []Pollutant{PM25, PM10, NO2, SO2, O3, CO}
}

// ParsePollutant looks a pollutant up by key (pm25, pm10, no2, so2, o3, co).
func ParsePollutant(key string) (Pollutant, error) {
	for i, info := range pollutantTable {
		if info.key == key {
			return Pollutant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pollutant %q", key)
}

func (p Pollutant) valid() bool { return p >= PM25 && p <= CO }

func (p Pollutant) Key() string {
	if !p.valid() {
		return ""
	}
	return pollutantTable[p].key
}

func (p Pollutant) Label() string {
	if !p.valid() {
		return fmt.Sprintf("Pollutant(%d)", int(p))
	}
	return pollutantTable[p].label
}

func (p Pollutant) Unit() string {
	if !p.valid() {
		return ""
	}
	return pollutantTable[p].unit
}

func (p Pollutant) Description() string {
	if !p.valid() {
		return ""
	}
	return pollutantTable[p].description
}

func (p Pollutant) String() string { return p.Label() }

// MarshalText encodes the pollutant as its key.
func (p Pollutant) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("invalid pollutant %d", int(p))
	}
	return []byte(p.Key()), nil
}

func (p *Pollutant) UnmarshalText(text []byte) error {
	parsed, err := ParsePollutant(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
