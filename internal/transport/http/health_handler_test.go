package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/services"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/shared/testutil"
)

func newTestHealthHandler(t *testing.T, checks map[string]string) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService("1.2.3", "2025-03-14T00:00:00Z", logger)
	for name, status := range checks {
		status := status
		svc.RegisterCheck(name, func(context.Context) services.ServiceHealth {
			return services.ServiceHealth{Status: status}
		})
	}
	return NewHealthHandler(svc, logger)
}

func TestHealthHandler_Endpoints(t *testing.T) {
	h := newTestHealthHandler(t, nil)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus string
	}{
		{"health", h.HealthCheck, "ok"},
		{"liveness", h.LivenessCheck, "alive"},
		{"readiness", h.ReadinessCheck, services.StatusReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var got services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestHealthHandler_ReadinessStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]string
		want   int
	}{
		{"all ready", map[string]string{"summarizer": services.StatusReady}, http.StatusOK},
		{"disabled ignored", map[string]string{"summarizer": services.StatusReady, "sheets": services.StatusDisabled}, http.StatusOK},
		{"not ready", map[string]string{"summarizer": services.StatusReady, "sheets": services.StatusNotReady}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHealthHandler(t, tt.checks)
			rec := httptest.NewRecorder()
			h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

			assert.Equal(t, tt.want, rec.Code)
			var got services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got.Services, len(tt.checks))
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	h := newTestHealthHandler(t, nil)
	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1.2.3", got["version"])
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apperrors.NewErrorHandler(logger, false)

	t.Run("delegates to exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("waves_summaries_total 1\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exporter, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "waves_summaries_total")
	})

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "METRICS_DISABLED")
	})
}
