package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/airquality/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const defaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the database at dbPath and brings its schema up to
// date.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrator := migrate.NewMigrator(db, MigrationProvider())
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// MigrationProvider returns the embedded configuration schema migrations
func MigrationProvider() *migrate.FSProvider {
	return migrate.NewFSProvider(migrationFS, "migrations", "schema_migrations")
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	dataset, err := s.GetDataset()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	config.Dataset = *dataset

	cities, err := s.GetCities()
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}
	config.Cities = cities

	defaults, err := s.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	config.Defaults = *defaults

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	logging, err := s.GetLogging()
	if err != nil {
		return nil, fmt.Errorf("failed to load logging: %w", err)
	}
	config.Logging = *logging

	return config, nil
}

// GetDataset returns the dataset section. A database with no saved
// configuration yields zero values.
func (s *SQLiteProvider) GetDataset() (*DatasetData, error) {
	query := `SELECT dataset_year, dataset_seed FROM configs WHERE name = ?`

	var seed int64
	dataset := &DatasetData{}
	err := s.db.QueryRow(query, defaultConfigName).Scan(&dataset.Year, &seed)
	if errors.Is(err, sql.ErrNoRows) {
		return dataset, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}
	dataset.Seed = uint64(seed)

	return dataset, nil
}

// GetCities returns cities in their configured order
func (s *SQLiteProvider) GetCities() ([]CityData, error) {
	query := `
		SELECT city_id, name, country, latitude, longitude,
		       baseline_pm25, baseline_pm10, baseline_no2,
		       baseline_so2, baseline_o3, baseline_co
		FROM cities
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
		ORDER BY position
	`

	rows, err := s.db.Query(query, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []CityData
	for rows.Next() {
		var city CityData
		var pm25, pm10, no2, so2, o3, co sql.NullFloat64

		err := rows.Scan(
			&city.ID, &city.Name, &city.Country, &city.Latitude, &city.Longitude,
			&pm25, &pm10, &no2, &so2, &o3, &co,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}

		if pm25.Valid {
			city.Baseline = &BaselineData{
				PM25: pm25.Float64,
				PM10: pm10.Float64,
				NO2:  no2.Float64,
				SO2:  so2.Float64,
				O3:   o3.Float64,
				CO:   co.Float64,
			}
		}

		cities = append(cities, city)
	}

	return cities, rows.Err()
}

// GetDefaults returns the default selection
func (s *SQLiteProvider) GetDefaults() (*DefaultsData, error) {
	query := `SELECT default_start, default_end, default_pollutant FROM configs WHERE name = ?`

	defaults := &DefaultsData{}
	err := s.db.QueryRow(query, defaultConfigName).Scan(&defaults.Start, &defaults.End, &defaults.Pollutant)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query defaults: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT city_id FROM default_cities
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
		ORDER BY position
	`, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query default cities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan default city: %w", err)
		}
		defaults.Cities = append(defaults.Cities, id)
	}

	return defaults, rows.Err()
}

// GetControllers returns enabled controller configurations
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type, rest_cert, rest_key, rest_port,
		       rest_listen_addr, rest_enable_cors
		FROM controller_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?) AND enabled = 1
		ORDER BY id
	`

	rows, err := s.db.Query(query, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var rest RESTServerData

		err := rows.Scan(&controller.Type, &rest.Cert, &rest.Key, &rest.Port, &rest.ListenAddr, &rest.EnableCORS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		if controller.Type == "rest" {
			controller.RESTServer = &rest
		}
		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// GetLogging returns the logging section
func (s *SQLiteProvider) GetLogging() (*LoggingData, error) {
	query := `SELECT log_file, log_max_size_mb, log_max_backups, log_max_age_days FROM configs WHERE name = ?`

	logging := &LoggingData{}
	err := s.db.QueryRow(query, defaultConfigName).Scan(&logging.File, &logging.MaxSizeMB, &logging.MaxBackups, &logging.MaxAgeDays)
	if errors.Is(err, sql.ErrNoRows) {
		return logging, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query logging: %w", err)
	}

	return logging, nil
}

// IsReadOnly returns false since SQLite provider supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.clearExistingConfig(tx, defaultConfigName); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	configID, err := s.insertConfig(tx, defaultConfigName, configData)
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	for i, city := range configData.Cities {
		if err := s.insertCity(tx, configID, i, &city); err != nil {
			return fmt.Errorf("failed to insert city %s: %w", city.ID, err)
		}
	}

	for i, id := range configData.Defaults.Cities {
		query := `INSERT INTO default_cities (config_id, position, city_id) VALUES (?, ?, ?)`
		if _, err := tx.Exec(query, configID, i, id); err != nil {
			return fmt.Errorf("failed to insert default city %s: %w", id, err)
		}
	}

	for _, controller := range configData.Controllers {
		if err := s.insertController(tx, configID, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, name string) error {
	queries := []string{
		"DELETE FROM cities WHERE config_id IN (SELECT id FROM configs WHERE name = ?)",
		"DELETE FROM default_cities WHERE config_id IN (SELECT id FROM configs WHERE name = ?)",
		"DELETE FROM controller_configs WHERE config_id IN (SELECT id FROM configs WHERE name = ?)",
		"DELETE FROM configs WHERE name = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertConfig(tx *sql.Tx, name string, c *ConfigData) (int64, error) {
	query := `
		INSERT INTO configs (
			name, dataset_year, dataset_seed,
			default_start, default_end, default_pollutant,
			log_file, log_max_size_mb, log_max_backups, log_max_age_days,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
	`
	result, err := tx.Exec(query,
		name, c.Dataset.Year, int64(c.Dataset.Seed),
		c.Defaults.Start, c.Defaults.End, c.Defaults.Pollutant,
		c.Logging.File, c.Logging.MaxSizeMB, c.Logging.MaxBackups, c.Logging.MaxAgeDays,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteProvider) insertCity(tx *sql.Tx, configID int64, position int, city *CityData) error {
	query := `
		INSERT INTO cities (
			config_id, position, city_id, name, country, latitude, longitude,
			baseline_pm25, baseline_pm10, baseline_no2,
			baseline_so2, baseline_o3, baseline_co
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var pm25, pm10, no2, so2, o3, co sql.NullFloat64
	if b := city.Baseline; b != nil {
		pm25, pm10, no2 = nullFloat64(b.PM25), nullFloat64(b.PM10), nullFloat64(b.NO2)
		so2, o3, co = nullFloat64(b.SO2), nullFloat64(b.O3), nullFloat64(b.CO)
	}

	_, err := tx.Exec(query,
		configID, position, city.ID, city.Name, city.Country, city.Latitude, city.Longitude,
		pm25, pm10, no2, so2, o3, co,
	)
	return err
}

func (s *SQLiteProvider) insertController(tx *sql.Tx, configID int64, controller *ControllerData) error {
	query := `
		INSERT INTO controller_configs (
			config_id, controller_type, enabled,
			rest_cert, rest_key, rest_port, rest_listen_addr, rest_enable_cors
		) VALUES (?, ?, 1, ?, ?, ?, ?, ?)
	`

	rest := RESTServerData{}
	if controller.RESTServer != nil {
		rest = *controller.RESTServer
	}

	_, err := tx.Exec(query,
		configID, controller.Type,
		rest.Cert, rest.Key, rest.Port, rest.ListenAddr, rest.EnableCORS,
	)
	return err
}

func nullFloat64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}
