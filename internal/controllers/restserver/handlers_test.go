package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/airquality/internal/analytics"
	"github.com/chrissnell/airquality/internal/dataset"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/types"
	"github.com/chrissnell/airquality/pkg/config"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestController(t *testing.T, rc config.RESTServerData) *Controller {
	t.Helper()

	store, err := dataset.NewStore(dataset.NewGenerator(2024, 7))
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, store,
		filter.NewSelection(store.Cities(), store.Year()), rc, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController() returned error: %v", err)
	}
	return ctrl
}

func serve(ctrl *Controller, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Server.Addr = %q, expected 0.0.0.0:8080", ctrl.Server.Addr)
	}
}

func TestNewControllerRejectsBadDefaults(t *testing.T) {
	store, err := dataset.NewStore(dataset.NewGenerator(2024, 7))
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}
	sel := filter.NewSelection(store.Cities(), 2024)
	sel.CityIDs = []string{"city-99"}

	if _, err := NewController(context.Background(), &sync.WaitGroup{}, store, sel, config.RESTServerData{}, zap.NewNop().Sugar()); err == nil {
		t.Error("expected error for unknown default city")
	}
}

func TestHealthAndRequestID(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := serve(ctrl, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response has no request ID")
	}

	var body map[string]any
	decode(t, rec, &body)
	if body["readings"] != float64(5*366) {
		t.Errorf("readings = %v, expected %d", body["readings"], 5*366)
	}

	rec = serve(ctrl, http.MethodGet, "/healthz", map[string]string{RequestIDHeader: "abc-123"})
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, expected the caller's ID", got)
	}
}

func TestAccessLogUsesControllerLogger(t *testing.T) {
	store, err := dataset.NewStore(dataset.NewGenerator(2024, 7))
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, store,
		filter.NewSelection(store.Cities(), store.Year()), config.RESTServerData{ListenAddr: "127.0.0.1", Port: 9000}, zap.New(core).Sugar())
	if err != nil {
		t.Fatalf("NewController() returned error: %v", err)
	}

	serve(ctrl, http.MethodGet, "/api/cities", map[string]string{RequestIDHeader: "req-42"})

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("access log entries = %d, expected 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-42" {
		t.Errorf("request_id = %v, expected req-42", fields["request_id"])
	}
	if fields["path"] != "/api/cities" {
		t.Errorf("path = %v, expected /api/cities", fields["path"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status = %v, expected %d", fields["status"], http.StatusOK)
	}
}

func TestGetCities(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	var body struct {
		Cities     []types.City `json:"cities"`
		Pollutants []struct {
			Key string `json:"key"`
		} `json:"pollutants"`
		Year int `json:"year"`
	}
	decode(t, serve(ctrl, http.MethodGet, "/api/cities", nil), &body)

	if len(body.Cities) != 5 || body.Cities[0].Name != "Los Angeles" {
		t.Errorf("cities = %+v", body.Cities)
	}
	if len(body.Pollutants) != 6 || body.Pollutants[0].Key != "pm25" {
		t.Errorf("pollutants = %+v", body.Pollutants)
	}
	if body.Year != 2024 {
		t.Errorf("year = %d, expected 2024", body.Year)
	}
}

func TestGetReadingsSelection(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	tests := []struct {
		name   string
		target string
		count  int
	}{
		{"defaults to first city over the year", "/api/readings", 366},
		{"two cities in january", "/api/readings?cities=city-1,city-4&start=2024-01-01&end=2024-01-31", 62},
		{"single day", "/api/readings?cities=city-2&start=2024-03-15&end=2024-03-15", 1},
		{"empty city set", "/api/readings?cities=", 0},
		{"whitespace and trailing comma", "/api/readings?cities=%20city-3,&start=2024-02-01&end=2024-02-29", 29},
		{"repeated city", "/api/readings?cities=city-1,city-1,%20city-1", 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(ctrl, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
			}
			var readings []types.Reading
			decode(t, rec, &readings)
			if len(readings) != tt.count {
				t.Errorf("len(readings) = %d, expected %d", len(readings), tt.count)
			}
		})
	}
}

func TestBadSelection(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	tests := []struct {
		name   string
		target string
	}{
		{"malformed start", "/api/stats?start=2024-1-1"},
		{"impossible date", "/api/stats?end=2024-02-30"},
		{"inverted range", "/api/stats?start=2024-06-01&end=2024-05-01"},
		{"unknown city", "/api/stats?cities=city-42"},
		{"unknown pollutant", "/api/dashboard?pollutant=radon"},
		{"bad export", "/api/export?start=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(ctrl, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, expected 400", rec.Code)
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["error"] == "" {
				t.Errorf("error body = %q", rec.Body.String())
			}
		})
	}
}

func TestGetCityStatsAndRanking(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	var stats []analytics.CityStats
	decode(t, serve(ctrl, http.MethodGet, "/api/stats?cities=city-4,city-2", nil), &stats)
	if len(stats) != 2 || stats[0].CityID != "city-2" || stats[1].CityID != "city-4" {
		t.Fatalf("stats = %+v, expected New Delhi then London", stats)
	}
	for _, s := range stats {
		if s.GoodDays+s.ModerateDays+s.UnhealthyDays != 366 {
			t.Errorf("%s day buckets do not sum to 366", s.CityName)
		}
	}

	var ranking analytics.Ranking
	decode(t, serve(ctrl, http.MethodGet, "/api/ranking?cities=city-4,city-2", nil), &ranking)
	if ranking.Worst == nil || ranking.Best == nil {
		t.Fatalf("ranking = %+v", ranking)
	}
	if ranking.Worst.AvgAQI < ranking.Best.AvgAQI {
		t.Errorf("worst %d below best %d", ranking.Worst.AvgAQI, ranking.Best.AvgAQI)
	}

	decode(t, serve(ctrl, http.MethodGet, "/api/stats?cities=", nil), &stats)
	if len(stats) != 0 {
		t.Errorf("empty selection produced %d stats", len(stats))
	}
}

func TestGetMonthlyAndHeatMap(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	var monthly struct {
		Monthly []analytics.MonthlyAggregate `json:"monthly"`
		Trend   []analytics.Point            `json:"trend"`
	}
	decode(t, serve(ctrl, http.MethodGet, "/api/monthly?start=2024-01-15&end=2024-03-10", nil), &monthly)
	if len(monthly.Monthly) != 3 || monthly.Monthly[0].Month != "2024-01" || monthly.Monthly[0].Count != 17 {
		t.Errorf("monthly = %+v", monthly.Monthly)
	}
	if len(monthly.Trend) != 3 || monthly.Trend[2].Label != "Mar" {
		t.Errorf("trend = %+v", monthly.Trend)
	}

	var heat analytics.HeatMap
	decode(t, serve(ctrl, http.MethodGet, "/api/heatmap?cities=city-5,city-1", nil), &heat)
	if len(heat.Rows) != 2 || len(heat.ColumnLabels) != 12 {
		t.Fatalf("heat map shape = %d x %d", len(heat.Rows), len(heat.ColumnLabels))
	}
	if heat.RowLabels[0] != "Tokyo" {
		t.Errorf("first row = %q, expected Tokyo", heat.RowLabels[0])
	}

	decode(t, serve(ctrl, http.MethodGet, "/api/heatmap?cities=city-5,city-1,city-5", nil), &heat)
	if len(heat.Rows) != 2 || heat.RowLabels[0] != "Tokyo" {
		t.Errorf("repeated city heat map rows = %v, expected [Tokyo, ...] with 2 rows", heat.RowLabels)
	}
}

func TestGetOverviewMsgPack(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := serve(ctrl, http.MethodGet, "/api/overview", map[string]string{"Accept": "application/x-msgpack"})
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid msgpack: %v", err)
	}
	if _, ok := body["totalReadings"]; !ok {
		t.Errorf("msgpack body missing totalReadings: %v", body)
	}
	if _, ok := body["gauge"]; !ok {
		t.Errorf("msgpack body missing gauge: %v", body)
	}
}

func TestGetDashboard(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	var d struct {
		Overview  analytics.Overview    `json:"overview"`
		CityStats []analytics.CityStats `json:"cityStats"`
		Insights  []analytics.Insight   `json:"insights"`
	}
	decode(t, serve(ctrl, http.MethodGet, "/api/dashboard?cities=city-1,city-2,city-3&pollutant=no2", nil), &d)

	if d.Overview.TotalReadings != 3*366 {
		t.Errorf("TotalReadings = %d, expected %d", d.Overview.TotalReadings, 3*366)
	}
	if len(d.CityStats) != 3 {
		t.Errorf("len(CityStats) = %d, expected 3", len(d.CityStats))
	}
	if len(d.Insights) == 0 {
		t.Error("dashboard has no insights")
	}
}

func TestGetExport(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := serve(ctrl, http.MethodGet, "/api/export?cities=city-4&start=2024-12-30&end=2024-12-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, expected text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "air-quality-data.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	lines := strings.Split(rec.Body.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, expected 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2024-12-30,London,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestCORS(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{EnableCORS: true})

	rec := serve(ctrl, http.MethodOptions, "/api/stats", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodGet,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, expected 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on preflight")
	}

	rec = serve(ctrl, http.MethodGet, "/api/stats", map[string]string{"Origin": "http://localhost:3000"})
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("GET status = %d, CORS header %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	plain := newTestController(t, config.RESTServerData{})
	rec = serve(plain, http.MethodGet, "/api/stats", map[string]string{"Origin": "http://localhost:3000"})
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS header set without enable-cors")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	for _, path := range []string{"/api/cities", "/api/stats", "/api/heatmap", "/api/export", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			if rec := serve(ctrl, http.MethodPost, path, nil); rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("POST %s status = %d, expected 405", path, rec.Code)
			}
		})
	}

	if rec := serve(ctrl, http.MethodGet, "/api/nothing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/nothing status = %d, expected 404", rec.Code)
	}
}
