package log

import (
	"time"

	"go.uber.org/zap"
)

// HTTPLogEntry describes one served request.
type HTTPLogEntry struct {
	RequestID  string
	Method     string
	Path       string
	Query      string
	Status     int
	Duration   time.Duration
	Size       int
	RemoteAddr string
	UserAgent  string
}

// LogHTTPRequest writes an access-log line to logger, or to the package
// logger when logger is nil. Server errors are logged at error level.
func LogHTTPRequest(logger *zap.SugaredLogger, e HTTPLogEntry) {
	if logger == nil {
		logger = GetSugaredLogger()
	}

	fields := []interface{}{
		"request_id", e.RequestID,
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"size", e.Size,
		"remote_addr", e.RemoteAddr,
		"user_agent", e.UserAgent,
	}
	if e.Query != "" {
		fields = append(fields, "query", e.Query)
	}

	if e.Status >= 500 {
		logger.Errorw("http request", fields...)
		return
	}
	logger.Infow("http request", fields...)
}
