package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/chrissnell/airquality/internal/dataset"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/log"
	"github.com/chrissnell/airquality/internal/managers"
	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/aqi"
	"github.com/chrissnell/airquality/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := BuildStore(a.config)
	if err != nil {
		return err
	}
	a.logger.Infow("dataset generated", "year", store.Year(), "cities", len(store.Cities()), "readings", store.Len())

	defaults, err := DefaultSelection(a.config.Defaults, store)
	if err != nil {
		return err
	}

	controllers := a.config.Controllers
	if len(controllers) == 0 {
		a.logger.Info("no controllers configured; starting the REST server with default settings")
		controllers = []config.ControllerData{{Type: "rest"}}
	}

	cm, err := managers.NewControllerManager(ctx, &wg, controllers, store, defaults, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// BuildStore generates the dataset described by cfg. Zero dataset values and
// an empty city list fall back to the built-in year, seed and cities.
// Configured cities inherit the built-in baseline for their ID unless they
// supply their own.
func BuildStore(cfg *config.ConfigData) (*dataset.Store, error) {
	year, seed := cfg.Dataset.Year, cfg.Dataset.Seed
	if year == 0 {
		year = dataset.DefaultYear
	}
	if seed == 0 {
		seed = dataset.DefaultSeed
	}

	g := dataset.NewGenerator(year, seed)

	if len(cfg.Cities) > 0 {
		g.Cities = make([]types.City, 0, len(cfg.Cities))
		for _, c := range cfg.Cities {
			g.Cities = append(g.Cities, types.City{
				ID:        c.ID,
				Name:      c.Name,
				Country:   c.Country,
				Latitude:  c.Latitude,
				Longitude: c.Longitude,
			})
			if b := c.Baseline; b != nil {
				g.Baselines[c.ID] = aqi.Concentrations{
					PM25: b.PM25, PM10: b.PM10, NO2: b.NO2,
					SO2: b.SO2, O3: b.O3, CO: b.CO,
				}
			}
		}
	}

	store, err := dataset.NewStore(g)
	if err != nil {
		return nil, fmt.Errorf("error building dataset: %w", err)
	}
	return store, nil
}

// DefaultSelection overlays the configured defaults on the initial
// selection: the first city over the whole dataset year, composite AQI.
func DefaultSelection(d config.DefaultsData, store *dataset.Store) (filter.Selection, error) {
	sel := filter.NewSelection(store.Cities(), store.Year())

	if len(d.Cities) > 0 {
		sel.CityIDs = slices.Clone(d.Cities)
	}

	start, end := sel.DateRange.Start, sel.DateRange.End
	if d.Start != "" {
		start = d.Start
	}
	if d.End != "" {
		end = d.End
	}
	dr, err := filter.ParseDateRange(start, end)
	if err != nil {
		return filter.Selection{}, fmt.Errorf("invalid default date range: %w", err)
	}
	sel.DateRange = dr

	if d.Pollutant != "" {
		sel.Pollutant = d.Pollutant
	}

	if err := sel.Validate(store.Cities()); err != nil {
		return filter.Selection{}, fmt.Errorf("invalid default selection: %w", err)
	}
	return sel, nil
}
