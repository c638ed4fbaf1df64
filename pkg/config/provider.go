// Package config loads airquality configuration from YAML files or SQLite
// databases.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate for any structural problem.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataset() (*DatasetData, error)
	GetCities() ([]CityData, error)
	GetDefaults() (*DefaultsData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset     DatasetData      `json:"dataset" yaml:"dataset"`
	Cities      []CityData       `json:"cities,omitempty" yaml:"cities,omitempty"`
	Defaults    DefaultsData     `json:"defaults" yaml:"defaults"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
	Logging     LoggingData      `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// DatasetData controls synthetic dataset generation. Zero values select the
// built-in year and seed.
type DatasetData struct {
	Year int    `json:"year,omitempty" yaml:"year,omitempty"`
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// CityData describes one monitored city. Baseline is required for cities
// that are not part of the built-in set.
type CityData struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Country   string        `json:"country,omitempty" yaml:"country,omitempty"`
	Latitude  float64       `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64       `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Baseline  *BaselineData `json:"baseline,omitempty" yaml:"baseline,omitempty"`
}

// BaselineData holds typical pollutant concentrations for a city
type BaselineData struct {
	PM25 float64 `json:"pm25" yaml:"pm25"`
	PM10 float64 `json:"pm10" yaml:"pm10"`
	NO2  float64 `json:"no2" yaml:"no2"`
	SO2  float64 `json:"so2" yaml:"so2"`
	O3   float64 `json:"o3" yaml:"o3"`
	CO   float64 `json:"co" yaml:"co"`
}

// DefaultsData is the selection applied when a request omits a parameter
type DefaultsData struct {
	Cities    []string `json:"cities,omitempty" yaml:"cities,omitempty"`
	Start     string   `json:"start,omitempty" yaml:"start,omitempty"`
	End       string   `json:"end,omitempty" yaml:"end,omitempty"`
	Pollutant string   `json:"pollutant,omitempty" yaml:"pollutant,omitempty"`
}

// ControllerData holds the configuration for a controller backend
type ControllerData struct {
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen-addr,omitempty"`
	EnableCORS bool   `json:"enable_cors,omitempty" yaml:"enable-cors,omitempty"`
}

// LoggingData configures optional rotated file logging
type LoggingData struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max-size-mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max-backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max-age-days,omitempty"`
}

const dateLayout = "2006-01-02"

// Validate checks the configuration for structural problems. Every returned
// error wraps ErrInvalidConfig.
func (c *ConfigData) Validate() error {
	if c.Dataset.Year < 0 || c.Dataset.Year > 9999 {
		return fmt.Errorf("%w: dataset year %d out of range", ErrInvalidConfig, c.Dataset.Year)
	}

	seen := make(map[string]bool, len(c.Cities))
	for i, city := range c.Cities {
		if city.ID == "" {
			return fmt.Errorf("%w: city %d has no id", ErrInvalidConfig, i)
		}
		if city.Name == "" {
			return fmt.Errorf("%w: city %s has no name", ErrInvalidConfig, city.ID)
		}
		if seen[city.ID] {
			return fmt.Errorf("%w: duplicate city id %s", ErrInvalidConfig, city.ID)
		}
		seen[city.ID] = true

		if b := city.Baseline; b != nil {
			if b.PM25 < 0 || b.PM10 < 0 || b.NO2 < 0 || b.SO2 < 0 || b.O3 < 0 || b.CO < 0 {
				return fmt.Errorf("%w: city %s has a negative baseline", ErrInvalidConfig, city.ID)
			}
		}
	}

	if len(c.Cities) > 0 {
		for _, id := range c.Defaults.Cities {
			if !seen[id] {
				return fmt.Errorf("%w: default city %s is not configured", ErrInvalidConfig, id)
			}
		}
	}

	var start, end time.Time
	var err error
	if c.Defaults.Start != "" {
		if start, err = time.Parse(dateLayout, c.Defaults.Start); err != nil {
			return fmt.Errorf("%w: default start %q: %v", ErrInvalidConfig, c.Defaults.Start, err)
		}
	}
	if c.Defaults.End != "" {
		if end, err = time.Parse(dateLayout, c.Defaults.End); err != nil {
			return fmt.Errorf("%w: default end %q: %v", ErrInvalidConfig, c.Defaults.End, err)
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: default start %s is after end %s", ErrInvalidConfig, c.Defaults.Start, c.Defaults.End)
	}

	for _, controller := range c.Controllers {
		switch controller.Type {
		case "rest":
			rest := controller.RESTServer
			if rest == nil {
				return fmt.Errorf("%w: rest controller has no rest section", ErrInvalidConfig)
			}
			if rest.Port < 0 || rest.Port > 65535 {
				return fmt.Errorf("%w: rest port %d out of range", ErrInvalidConfig, rest.Port)
			}
			if (rest.Cert == "") != (rest.Key == "") {
				return fmt.Errorf("%w: rest cert and key must be set together", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown controller type %q", ErrInvalidConfig, controller.Type)
		}
	}

	return nil
}
