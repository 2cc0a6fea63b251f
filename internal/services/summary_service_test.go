package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/shared/testutil"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

type mockRowSource struct {
	mock.Mock
}

func (m *mockRowSource) Rows(ctx context.Context) ([]domain.InputRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]domain.InputRow)
	return rows, args.Error(1)
}

func (m *mockRowSource) Kind() string { return "mock" }

type serviceFixture struct {
	svc    *SummaryService
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *testutil.BufferedSlogHandler
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := infrastructure.CreateSummaryMetrics(mp.Meter("test"))
	require.NoError(t, err)

	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		Mode:     domain.ModeCategorySplit,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) },
	})

	svc := NewSummaryService(summarizer, dataprocessing.DefaultSourceFilter(), dataprocessing.DefaultTableOptions(),
		"Orders", metrics, tp.Tracer("test"), logger)
	return &serviceFixture{svc: svc, spans: spans, reader: reader, logs: handler}
}

// counterTotal sums every data point of an int64 counter.
func (f *serviceFixture) counterTotal(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func (f *serviceFixture) spanNames() []string {
	var names []string
	for _, s := range f.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func shipRows() []domain.InputRow {
	return []domain.InputRow{
		testutil.OrderRow("AMZ", "1", "W1", "2025-03-14", "C1", "PCL"),
		testutil.OrderRow("Standard", "2", "W1", "2025-03-14", "C1", "PCL"),
		testutil.OrderRow("Standard", "3", "W2", "2025-03-14", "C2", "LTL"),
		testutil.OrderRow("WEB", "4", "W3", "2025-03-15", "C3", "PCL"),
	}
}

func strPtr(s string) *string { return &s }

func TestSummaryService_Summarize(t *testing.T) {
	tests := []struct {
		name      string
		req       SummaryRequest
		wantWaves []string
		wantPCL   int
	}{
		{
			name:      "default exclusion",
			req:       SummaryRequest{TargetDate: "2025-03-14"},
			wantWaves: []string{"W1"},
			wantPCL:   1,
		},
		{
			name:      "exclusion disabled",
			req:       SummaryRequest{TargetDate: "2025-03-14", Exclude: strPtr("")},
			wantWaves: []string{"W1", "W2"},
			wantPCL:   2,
		},
		{
			name:      "custom exclusion",
			req:       SummaryRequest{TargetDate: "2025-03-14", Exclude: strPtr("amz")},
			wantWaves: []string{"W1", "W2"},
			wantPCL:   1,
		},
		{
			name:      "fallback date",
			req:       SummaryRequest{TargetDate: "today"},
			wantWaves: []string{"W1"},
			wantPCL:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			result := f.svc.Summarize(context.Background(), shipRows(), tt.req)

			require.True(t, result.Success, result.Message)
			var waves []string
			for _, r := range result.Rows {
				waves = append(waves, r.Wave)
			}
			assert.Equal(t, tt.wantWaves, waves)
			assert.Equal(t, tt.wantPCL, result.Rows[0].PCLOrderCount)
		})
	}
}

func TestSummaryService_ModeOverride(t *testing.T) {
	f := newServiceFixture(t)
	result := f.svc.Summarize(context.Background(), shipRows(), SummaryRequest{
		TargetDate: "2025-03-14",
		Mode:       domain.ModeTotal,
		Exclude:    strPtr(""),
	})

	require.True(t, result.Success)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, domain.ModeTotal, result.Rows[0].Mode)
	assert.Equal(t, 2, result.Rows[0].OrderCount)
	assert.Equal(t, domain.ModeCategorySplit, f.svc.Mode(), "override does not change the service")
}

func TestSummaryService_RecordsTelemetry(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.svc.Summarize(ctx, shipRows(), SummaryRequest{TargetDate: "2025-03-14"})
	f.svc.SummarizePayload(ctx, []byte(`{"rows":`), SummaryRequest{})

	assert.Equal(t, int64(2), f.counterTotal(t, "wave_summaries_total"))
	assert.Equal(t, int64(2), f.counterTotal(t, "wave_rows_excluded_total"))
	assert.Equal(t, int64(2), f.counterTotal(t, "wave_summary_rows_in_total"))
	assert.Equal(t, int64(1), f.counterTotal(t, "wave_summary_waves_total"))

	ended := f.spans.Ended()
	require.Len(t, ended, 1, "payload rejected before summarizing")
	assert.Equal(t, "SummaryService.Summarize", ended[0].Name())
	assert.Equal(t, otelcodes.Unset, ended[0].Status().Code)
}

func TestSummaryService_SummarizePayload(t *testing.T) {
	f := newServiceFixture(t)

	result := f.svc.SummarizePayload(context.Background(), []byte(`{"rows":"nope"}`), SummaryRequest{})
	assert.False(t, result.Success)
	assert.Equal(t, dataprocessing.MsgNotRowArray, result.Message)
	assert.NotNil(t, result.Rows)
	testutil.AssertLogContains(t, f.logs, slog.LevelInfo, "rejected row payload")

	result = f.svc.SummarizePayload(context.Background(),
		[]byte(`[{"Source Code":"AMZ","Order Num":"1","Wave#":"W1","Req Ship Date":"2025-03-14","CHUTE":null}]`),
		SummaryRequest{TargetDate: "2025-03-14"})
	assert.False(t, result.Success)
	assert.Equal(t, "Missing required columns: LTL_PCL", result.Message)

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, otelcodes.Error, ended[0].Status().Code)
}

func TestSummaryService_SummarizeSource(t *testing.T) {
	f := newServiceFixture(t)
	src := &mockRowSource{}
	src.On("Rows", mock.Anything).Return(shipRows(), nil).Once()

	result, err := f.svc.SummarizeSource(context.Background(), src, SummaryRequest{TargetDate: "2025-03-14"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Summarized 1 unique Waves for 2025-03-14.", result.Message)

	src.AssertExpectations(t)
	testutil.AssertNoErrors(t, f.logs)
	assert.Equal(t, int64(4), f.counterTotal(t, "wave_rows_extracted_total"))
	assert.ElementsMatch(t, []string{"SummaryService.Extract", "SummaryService.Summarize"}, f.spanNames())
}

func TestSummaryService_SummarizeSourceError(t *testing.T) {
	f := newServiceFixture(t)
	src := &mockRowSource{}
	src.On("Rows", mock.Anything).Return(nil, apperrors.NewNotFoundError(`worksheet "Orders"`)).Once()

	_, err := f.svc.SummarizeSource(context.Background(), src, SummaryRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "SummaryService.Extract", ended[0].Name())
	assert.Equal(t, otelcodes.Error, ended[0].Status().Code)
	testutil.AssertLogContains(t, f.logs, slog.LevelWarn, "row extraction failed")
}

func TestSummaryService_SummarizeDates(t *testing.T) {
	f := newServiceFixture(t)
	rows := shipRows()

	out, err := f.svc.SummarizeDates(context.Background(), rows,
		[]string{"2025-03-15", " 2025-03-14", "2025-03-16"}, SummaryRequest{Exclude: strPtr("")})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "2025-03-15", out[0].Date)
	assert.Equal(t, "Summarized 1 unique Waves for 2025-03-15.", out[0].Result.Message)
	assert.Equal(t, "2025-03-14", out[1].Date)
	assert.Len(t, out[1].Result.Rows, 2)
	assert.Equal(t, `No rows with "Req Ship Date" = 2025-03-16.`, out[2].Result.Message)
	assert.Len(t, f.spans.Ended(), 3)

	// Inputs are shared read-only across the concurrent runs.
	assert.Equal(t, shipRows(), rows)
}

func TestSummaryService_SummarizeDatesManyDates(t *testing.T) {
	f := newServiceFixture(t)
	dates := make([]string, 40)
	for i := range dates {
		dates[i] = fmt.Sprintf("2025-03-%02d", i%28+1)
	}

	out, err := f.svc.SummarizeDates(context.Background(), shipRows(), dates, SummaryRequest{})
	require.NoError(t, err)
	for i, d := range out {
		assert.Equal(t, dates[i], d.Date)
		assert.True(t, d.Result.Success)
	}
}

func TestSummaryService_SummarizeDatesDefaultsToTarget(t *testing.T) {
	f := newServiceFixture(t)

	out, err := f.svc.SummarizeDates(context.Background(), shipRows(), nil, SummaryRequest{TargetDate: "2025-03-15"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2025-03-15", out[0].Date)
}

func TestSummaryService_SummarizeDatesMalformedDateUsesToday(t *testing.T) {
	f := newServiceFixture(t)

	out, err := f.svc.SummarizeDates(context.Background(), shipRows(), []string{"not-a-date", "2025-03-15"}, SummaryRequest{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2025-03-14", out[0].Date)
	assert.True(t, out[0].Result.Success)
	assert.Equal(t, "Summarized 1 unique Waves for 2025-03-14.", out[0].Result.Message)
	assert.Equal(t, "2025-03-15", out[1].Date)
}

func TestSummaryService_SummarizeDatesCanceled(t *testing.T) {
	f := newServiceFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.SummarizeDates(ctx, shipRows(), []string{"2025-03-14"}, SummaryRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummaryService_WorkbookSource(t *testing.T) {
	f := newServiceFixture(t)
	path := testutil.WriteWorkbook(t, "Orders", [][]interface{}{
		{"Source Code", "Order Num", "Wave#", "Req Ship Date", "CHUTE", "LTL_PCL"},
		{"AMZ", "1", "W1", 45730, "C1", "PCL"},
	})
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	result, err := f.svc.SummarizeSource(context.Background(), f.svc.WorkbookSource(file, "orders.xlsx", ""),
		SummaryRequest{TargetDate: "2025-03-14"})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "W1", result.Rows[0].Wave)
	assert.Equal(t, int64(1), f.counterTotal(t, "wave_rows_extracted_total"))
}

func TestNewSummaryService_Defaults(t *testing.T) {
	svc := NewSummaryService(nil, nil, dataprocessing.TableOptions{}, "", nil, nil, nil)
	result := svc.Summarize(context.Background(), nil, SummaryRequest{})
	assert.True(t, result.Success)
	assert.Equal(t, "No input rows.", result.Message)
}

func TestSummaryService_SheetSource(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.SheetSource("Orders")
	require.ErrorIs(t, err, apperrors.ErrSheetsDisabled)
	assert.False(t, f.svc.SheetsEnabled())

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"range":"Orders!A1:AB","values":[`+
			`["Source Code","Order Num","Wave#","Req Ship Date","CHUTE","LTL_PCL"],`+
			`["AMZ","1","W1",45730,"C1","PCL"],`+
			`["Standard","2","W1",45730,"C1","PCL"]]}`)
	}))
	defer srv.Close()

	client, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication())
	require.NoError(t, err)
	f.svc.UseSheets(client, "sheet-123")
	require.True(t, f.svc.SheetsEnabled())

	src, err := f.svc.SheetSource("")
	require.NoError(t, err)
	assert.Equal(t, "sheets", src.Kind())

	result, err := f.svc.SummarizeSource(context.Background(), src, SummaryRequest{TargetDate: "2025-03-14"})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Rows[0].PCLOrderCount)
	assert.Contains(t, gotPath, "sheet-123")
}
