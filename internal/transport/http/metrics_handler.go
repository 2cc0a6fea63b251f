package http

import (
	"net/http"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apperrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil exporter means
// metrics are disabled and every scrape gets a 503 problem.
func NewMetricsHandler(exporter http.Handler, errorHandler *apperrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r,
			apperrors.New(http.StatusServiceUnavailable, "METRICS_DISABLED", "Metrics export is disabled"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
