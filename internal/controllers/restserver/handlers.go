package restserver

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/chrissnell/airquality/internal/analytics"
	"github.com/chrissnell/airquality/internal/export"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// selection builds the request's selection on top of the configured
// defaults. A present but empty cities parameter selects no cities.
func (h *Handlers) selection(req *http.Request) (filter.Selection, error) {
	sel := h.controller.defaults
	sel.CityIDs = slices.Clone(sel.CityIDs)
	q := req.URL.Query()

	if q.Has("cities") {
		sel.CityIDs = []string{}
		for _, id := range strings.Split(q.Get("cities"), ",") {
			if id = strings.TrimSpace(id); id != "" && !slices.Contains(sel.CityIDs, id) {
				sel.CityIDs = append(sel.CityIDs, id)
			}
		}
	}

	start, end := sel.DateRange.Start, sel.DateRange.End
	if q.Has("start") {
		start = q.Get("start")
	}
	if q.Has("end") {
		end = q.Get("end")
	}
	dr, err := filter.ParseDateRange(start, end)
	if err != nil {
		return filter.Selection{}, err
	}
	sel.DateRange = dr

	if q.Has("pollutant") {
		sel.Pollutant = q.Get("pollutant")
	}

	if err := sel.Validate(h.controller.store.Cities()); err != nil {
		return filter.Selection{}, err
	}
	return sel, nil
}

// filtered parses the selection and applies it. On failure the error reply
// has already been written.
func (h *Handlers) filtered(w http.ResponseWriter, req *http.Request) (filter.Selection, []types.Reading, bool) {
	sel, err := h.selection(req)
	if err != nil {
		h.sendSelectionError(w, err)
		return filter.Selection{}, nil, false
	}
	return sel, filter.Apply(h.controller.store.Readings(), sel), true
}

func (h *Handlers) sendSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, filter.ErrMalformedDate),
		errors.Is(err, filter.ErrInvertedRange),
		errors.Is(err, filter.ErrUnknownCity),
		errors.Is(err, filter.ErrUnknownMetric):
		h.formatter.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.controller.logger.Errorw("selection failed", "error", err)
		h.formatter.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		h.controller.logger.Errorw("error encoding response", "path", req.URL.Path, "error", err)
	}
}

// GetCities returns the monitored cities and the pollutant catalogue
func (h *Handlers) GetCities(w http.ResponseWriter, req *http.Request) {
	type pollutant struct {
		Key         string `json:"key"`
		Label       string `json:"label"`
		Unit        string `json:"unit"`
		Description string `json:"description"`
	}

	pollutants := make([]pollutant, 0, len(types.Pollutants()))
	for _, p := range types.Pollutants() {
		pollutants = append(pollutants, pollutant{p.Key(), p.Label(), p.Unit(), p.Description()})
	}

	h.write(w, req, struct {
		Cities     []types.City `json:"cities"`
		Pollutants []pollutant  `json:"pollutants"`
		Year       int          `json:"year"`
	}{h.controller.store.Cities(), pollutants, h.controller.store.Year()})
}

// GetReadings returns the filtered readings
func (h *Handlers) GetReadings(w http.ResponseWriter, req *http.Request) {
	_, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	h.write(w, req, readings)
}

// GetCityStats returns one statistics record per selected city
func (h *Handlers) GetCityStats(w http.ResponseWriter, req *http.Request) {
	sel, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	h.write(w, req, analytics.CalculateCityStats(readings, sel.SelectedCities(h.controller.store.Cities())))
}

// GetRanking returns the worst and best selected cities
func (h *Handlers) GetRanking(w http.ResponseWriter, req *http.Request) {
	sel, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	stats := analytics.CalculateCityStats(readings, sel.SelectedCities(h.controller.store.Cities()))
	h.write(w, req, analytics.WorstAndBest(stats))
}

// GetMonthly returns the monthly AQI rollup and its chart series
func (h *Handlers) GetMonthly(w http.ResponseWriter, req *http.Request) {
	_, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	monthly := analytics.AggregateByMonth(readings)
	h.write(w, req, struct {
		Monthly []analytics.MonthlyAggregate `json:"monthly"`
		Trend   []analytics.Point            `json:"trend"`
	}{monthly, analytics.MonthlyTrend(monthly)})
}

// GetPollutants returns the average contribution of each pollutant
func (h *Handlers) GetPollutants(w http.ResponseWriter, req *http.Request) {
	_, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	contrib := analytics.PollutantContributions(readings)
	h.write(w, req, struct {
		Contributions []analytics.PollutantContribution `json:"contributions"`
		Series        []analytics.Bar                   `json:"series"`
	}{contrib, analytics.PollutantSeries(contrib)})
}

// GetHeatMap returns the city by month AQI matrix
func (h *Handlers) GetHeatMap(w http.ResponseWriter, req *http.Request) {
	sel, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	store := h.controller.store
	h.write(w, req, analytics.BuildHeatMap(readings, sel.CityIDs, store.Cities(), store.Year()))
}

// GetOverview returns the KPI summary and gauge
func (h *Handlers) GetOverview(w http.ResponseWriter, req *http.Request) {
	_, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	overview := analytics.Summarize(readings)
	h.write(w, req, struct {
		analytics.Overview
		Gauge analytics.Gauge `json:"gauge"`
	}{overview, analytics.NewGauge(overview.AvgAQI)})
}

// GetDashboard returns every aggregate for the selection in one response
func (h *Handlers) GetDashboard(w http.ResponseWriter, req *http.Request) {
	sel, err := h.selection(req)
	if err != nil {
		h.sendSelectionError(w, err)
		return
	}
	store := h.controller.store
	h.write(w, req, analytics.BuildDashboard(store.Readings(), store.Cities(), sel, store.Year()))
}

// GetExport downloads the filtered readings as CSV
func (h *Handlers) GetExport(w http.ResponseWriter, req *http.Request) {
	_, readings, ok := h.filtered(w, req)
	if !ok {
		return
	}
	body := export.CSV(readings, h.controller.store.Cities())
	if err := h.formatter.WriteAttachment(w, export.Filename, export.ContentType, strings.NewReader(body)); err != nil {
		h.controller.logger.Errorw("error writing export", "error", err)
	}
}

// GetHealth reports liveness and the dataset size
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, map[string]any{
		"status":   "ok",
		"readings": h.controller.store.Len(),
	})
}
