package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_MetricsEnabled(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	assert.NotNil(t, providers.Tracer)
	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestInitializeOTel_Twice(t *testing.T) {
	for i := 0; i < 2; i++ {
		providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "summarize")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	assert.Equal(t, TraceIDFromContext(ctx), GetTraceID(ctx))
	span.End()

	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.TracerProvider.Shutdown(ctx))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "zipkin"
	_, err := InitializeOTel(cfg, quietLogger())
	assert.Error(t, err)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{ServiceName: "waves", TracingExporter: "stdout", MetricsEnabled: false})
	assert.Equal(t, "waves", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.False(t, cfg.EnableMetrics)
}

func TestSummaryMetrics_ExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := CreateSummaryMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordSummary(ctx, "split", 12, 3, 25*time.Millisecond, true)
	metrics.RecordExcluded(ctx, 4)
	metrics.RecordExtracted(ctx, "excel", 12)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "wave_summaries_total")
	assert.Contains(t, body, "wave_summary_rows_in_total")
	assert.Contains(t, body, "wave_rows_excluded_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestSummaryMetrics_NilReceiver(t *testing.T) {
	var m *SummaryMetrics
	assert.NotPanics(t, func() {
		m.RecordSummary(context.Background(), "total", 1, 1, time.Millisecond, true)
		m.RecordExcluded(context.Background(), 1)
		m.RecordExtracted(context.Background(), "sheets", 1)
	})
}
