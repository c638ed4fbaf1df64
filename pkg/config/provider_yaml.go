package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{}
	if err := yaml.UnmarshalStrict(cfgFile, config); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) cached() (*ConfigData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config, nil
}

// GetDataset returns the dataset section
func (y *YAMLProvider) GetDataset() (*DatasetData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	dataset := config.Dataset
	return &dataset, nil
}

// GetCities returns the configured cities
func (y *YAMLProvider) GetCities() ([]CityData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return config.Cities, nil
}

// GetDefaults returns the default selection
func (y *YAMLProvider) GetDefaults() (*DefaultsData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	defaults := config.Defaults
	return &defaults, nil
}

// GetControllers returns controller configurations from YAML
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return config.Controllers, nil
}

// IsReadOnly returns true since YAML provider is read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
