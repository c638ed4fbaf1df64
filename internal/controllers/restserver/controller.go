// Package restserver serves the air-quality dashboard API over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/airquality/internal/dataset"
	"github.com/chrissnell/airquality/internal/filter"
	"github.com/chrissnell/airquality/internal/log"
	"github.com/chrissnell/airquality/pkg/config"
	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request ID back to the client
const RequestIDHeader = "X-Request-ID"

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	store      *dataset.Store
	defaults   filter.Selection
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. defaults is the
// selection used for any query parameter a request leaves out.
func NewController(ctx context.Context, wg *sync.WaitGroup, store *dataset.Store, defaults filter.Selection, rc config.RESTServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("REST server requires a reading store")
	}
	if err := defaults.Validate(store.Cities()); err != nil {
		return nil, fmt.Errorf("invalid default selection: %w", err)
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		store:      store,
		defaults:   defaults,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestLoggingMiddleware)

	methods := []string{http.MethodGet}
	if c.restConfig.EnableCORS {
		router.Use(gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins([]string{"*"}),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", "Accept", RequestIDHeader}),
		))
		methods = append(methods, http.MethodOptions)
	}

	router.HandleFunc("/api/cities", c.handlers.GetCities).Methods(methods...)
	router.HandleFunc("/api/readings", c.handlers.GetReadings).Methods(methods...)
	router.HandleFunc("/api/stats", c.handlers.GetCityStats).Methods(methods...)
	router.HandleFunc("/api/ranking", c.handlers.GetRanking).Methods(methods...)
	router.HandleFunc("/api/monthly", c.handlers.GetMonthly).Methods(methods...)
	router.HandleFunc("/api/pollutants", c.handlers.GetPollutants).Methods(methods...)
	router.HandleFunc("/api/heatmap", c.handlers.GetHeatMap).Methods(methods...)
	router.HandleFunc("/api/overview", c.handlers.GetOverview).Methods(methods...)
	router.HandleFunc("/api/dashboard", c.handlers.GetDashboard).Methods(methods...)
	router.HandleFunc("/api/export", c.handlers.GetExport).Methods(methods...)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(methods...)

	return router
}

// statusRecorder captures the status code and body size for access logging
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// requestLoggingMiddleware tags each request with an ID and writes an access
// log entry when it completes
func (c *Controller) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		log.LogHTTPRequest(c.logger, log.HTTPLogEntry{
			RequestID:  requestID,
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			Status:     rec.status,
			Duration:   time.Since(start),
			Size:       rec.size,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}
