package classify

import (
	"fmt"
	"runtime"

	"github.com/go-logr/logr"

	"taskflow/internal/apperr"
)

// UserAgent identifies this client in logs and requests. Set by main.
var UserAgent = fmt.Sprintf("taskflow (%s/%s)", runtime.GOOS, runtime.GOARCH)

// Tracker receives every logged error. It is the hook for an external
// error-tracking service.
type Tracker interface {
	Capture(err *apperr.Error, fields map[string]any)
}

type nopTracker struct{}

func (nopTracker) Capture(*apperr.Error, map[string]any) {}

// Logger writes classified errors to a logr sink and forwards them to a
// Tracker.
type Logger struct {
	Log     logr.Logger
	Tracker Tracker
	// URL is reported as the current location when the error has no endpoint.
	URL string
}

// NewLogger creates a Logger with a no-op tracker.
func NewLogger(log logr.Logger, url string) *Logger {
	return &Logger{Log: log, Tracker: nopTracker{}, URL: url}
}

// LogError records err. LOW and MEDIUM severities are logged as warnings,
// HIGH and CRITICAL as errors.
func (l *Logger) LogError(err *apperr.Error, context string) {
	url := l.URL
	if err.Endpoint != "" {
		url += err.Endpoint
	}

	kv := []any{
		"kind", string(err.Kind),
		"severity", string(err.Severity),
		"message", err.Message,
		"context", context,
		"userAgent", UserAgent,
		"url", url,
		"timestamp", err.Timestamp,
	}
	if err.HasStatus() {
		kv = append(kv, "status", err.Status, "method", err.Method, "endpoint", err.Endpoint)
	}
	if err.Field != "" {
		kv = append(kv, "field", err.Field)
	}

	switch err.Severity {
	case apperr.SeverityHigh, apperr.SeverityCritical:
		l.Log.Error(err, "error", kv...)
	default:
		l.Log.Info("warning", kv...)
	}

	tracker := l.Tracker
	if tracker == nil {
		tracker = nopTracker{}
	}
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i].(string)] = kv[i+1]
	}
	tracker.Capture(err, fields)
}
