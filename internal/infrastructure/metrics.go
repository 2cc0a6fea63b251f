package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SummaryMetrics holds the instruments recorded by the summary pipeline
// and the HTTP layer.
type SummaryMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	SummariesTotal  metric.Int64Counter
	RowsIn          metric.Int64Counter
	WavesOut        metric.Int64Counter
	SummaryDuration metric.Float64Histogram
	RowsExcluded    metric.Int64Counter
	RowsExtracted   metric.Int64Counter
}

// CreateSummaryMetrics registers every instrument on meter.
func CreateSummaryMetrics(meter metric.Meter) (*SummaryMetrics, error) {
	m := &SummaryMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.SummariesTotal, err = meter.Int64Counter(
		"wave_summaries_total",
		metric.WithDescription("Wave summaries produced, by outcome"),
	); err != nil {
		return nil, err
	}
	if m.RowsIn, err = meter.Int64Counter(
		"wave_summary_rows_in_total",
		metric.WithDescription("Order rows received by the summarizer"),
	); err != nil {
		return nil, err
	}
	if m.WavesOut, err = meter.Int64Counter(
		"wave_summary_waves_total",
		metric.WithDescription("Wave rows emitted by the summarizer"),
	); err != nil {
		return nil, err
	}
	if m.SummaryDuration, err = meter.Float64Histogram(
		"wave_summary_duration_seconds",
		metric.WithDescription("Time spent producing one wave summary"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RowsExcluded, err = meter.Int64Counter(
		"wave_rows_excluded_total",
		metric.WithDescription("Order rows dropped by the source-code filter"),
	); err != nil {
		return nil, err
	}
	if m.RowsExtracted, err = meter.Int64Counter(
		"wave_rows_extracted_total",
		metric.WithDescription("Order rows read from worksheets, by source kind"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSummary records one summarizer call. A nil receiver is a no-op.
func (m *SummaryMetrics) RecordSummary(ctx context.Context, mode string, rowsIn, wavesOut int, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	modeAttr := attribute.String("mode", mode)
	m.SummariesTotal.Add(ctx, 1, metric.WithAttributes(modeAttr, attribute.Bool("success", success)))
	m.RowsIn.Add(ctx, int64(rowsIn), metric.WithAttributes(modeAttr))
	m.WavesOut.Add(ctx, int64(wavesOut), metric.WithAttributes(modeAttr))
	m.SummaryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(modeAttr))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("summary.metrics_recorded",
			trace.WithAttributes(
				attribute.Int("rows_in", rowsIn),
				attribute.Int("waves_out", wavesOut),
				attribute.Bool("success", success),
			),
		)
	}
}

// RecordExcluded counts rows removed by the source filter.
func (m *SummaryMetrics) RecordExcluded(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsExcluded.Add(ctx, int64(n))
}

// RecordExtracted counts rows read from a worksheet.
func (m *SummaryMetrics) RecordExtracted(ctx context.Context, sourceKind string, n int) {
	if m == nil {
		return
	}
	m.RowsExtracted.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", sourceKind)))
}
