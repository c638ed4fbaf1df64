package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chrissnell/airquality/internal/app"
	"github.com/chrissnell/airquality/internal/constants"
	"github.com/chrissnell/airquality/internal/export"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/log"
	"github.com/chrissnell/airquality/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	exportFile := flag.String("export", "", "Write the selected readings as CSV to this file ('-' for stdout) and exit")
	cities := flag.String("cities", "", "Comma-separated city IDs for -export (default: configured defaults)")
	start := flag.String("start", "", "First date (YYYY-MM-DD) for -export")
	end := flag.String("end", "", "Last date (YYYY-MM-DD) for -export")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", constants.ServiceName, constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(log.Options{Debug: *debug}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if cfgData.Logging.File != "" {
		err := log.Init(log.Options{
			Debug:      *debug,
			File:       cfgData.Logging.File,
			MaxSizeMB:  cfgData.Logging.MaxSizeMB,
			MaxBackups: cfgData.Logging.MaxBackups,
			MaxAgeDays: cfgData.Logging.MaxAgeDays,
		})
		if err != nil {
			log.Errorf("Failed to initialize file logging: %v", err)
			os.Exit(1)
		}
	}

	if *exportFile != "" {
		if *cities != "" {
			cfgData.Defaults.Cities = splitCities(*cities)
		}
		if *start != "" {
			cfgData.Defaults.Start = *start
		}
		if *end != "" {
			cfgData.Defaults.End = *end
		}

		if err := runExport(cfgData, *exportFile); err != nil {
			log.Errorf("Export failed: %v", err)
			os.Exit(1)
		}
		return
	}

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	if err := cfgData.Validate(); err != nil {
		return nil, err
	}

	return cfgData, nil
}

// runExport writes the CSV for the configured default selection
func runExport(cfgData *config.ConfigData, path string) error {
	store, err := app.BuildStore(cfgData)
	if err != nil {
		return err
	}

	sel, err := app.DefaultSelection(cfgData.Defaults, store)
	if err != nil {
		return err
	}
	readings := filter.Apply(store.Readings(), sel)

	if path == "-" {
		if err := export.WriteCSV(os.Stdout, readings, store.Cities()); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("error creating export file: %w", err)
		}
		if err := export.WriteCSV(f, readings, store.Cities()); err != nil {
			f.Close()
			return fmt.Errorf("error writing CSV: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("error closing export file: %w", err)
		}
	}

	log.Infow("export complete", "file", path, "readings", len(readings), "start", sel.DateRange.Start, "end", sel.DateRange.End)
	return nil
}

func splitCities(s string) []string {
	ids := []string{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
