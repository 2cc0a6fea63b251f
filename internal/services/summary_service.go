package services

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/sheets/v4"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// SummaryRequest carries the per-call overrides of a summary run.
type SummaryRequest struct {
	// TargetDate is YYYY-MM-DD. Anything else selects today.
	TargetDate string
	// Mode overrides the summarizer's configured mode when set.
	Mode domain.SummaryMode
	// Exclude replaces the configured exclusion list when non-nil. A
	// pointer to "" disables exclusion.
	Exclude *string
	// SourceColumn replaces the filter column when set.
	SourceColumn string
}

// DatedSummary is one result of SummarizeDates.
type DatedSummary struct {
	Date   string               `json:"date"`
	Result domain.SummaryResult `json:"result"`
}

// SummaryService runs the extract, filter and summarize stages and records
// a span and metrics for each call.
type SummaryService struct {
	summarizer   *dataprocessing.Summarizer
	filter       *dataprocessing.SourceFilter
	table        dataprocessing.TableOptions
	defaultSheet string
	metrics      *infrastructure.SummaryMetrics
	tracer       trace.Tracer
	logger       *slog.Logger

	sheets        *sheets.Service
	spreadsheetID string
}

// NewSummaryService creates a summary service. metrics and tracer may be nil.
func NewSummaryService(
	summarizer *dataprocessing.Summarizer,
	filter *dataprocessing.SourceFilter,
	table dataprocessing.TableOptions,
	defaultSheet string,
	metrics *infrastructure.SummaryMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	if summarizer == nil {
		summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	}
	if filter == nil {
		filter = dataprocessing.DefaultSourceFilter()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}

	return &SummaryService{
		summarizer:   summarizer,
		filter:       filter,
		table:        table,
		defaultSheet: defaultSheet,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger.With(slog.String("service", "summary")),
	}
}

// Mode reports the configured summary mode.
func (s *SummaryService) Mode() domain.SummaryMode { return s.summarizer.Mode() }

// Summarize filters rows and summarizes them for one date.
func (s *SummaryService) Summarize(ctx context.Context, rows []domain.InputRow, req SummaryRequest) domain.SummaryResult {
	return s.summarize(ctx, s.Filter(ctx, rows, req), req.TargetDate, req.Mode)
}

// SummarizePayload decodes a JSON row payload and summarizes it. Payloads
// that are not row arrays produce a failed envelope, not an error.
func (s *SummaryService) SummarizePayload(ctx context.Context, payload []byte, req SummaryRequest) domain.SummaryResult {
	rows, err := dataprocessing.DecodeRows(payload)
	if err != nil {
		s.logger.InfoContext(ctx, "rejected row payload", slog.String("error", err.Error()))
		result := domain.NewSummaryFailure(appErrorMessage(err))
		s.metrics.RecordSummary(ctx, string(s.modeFor(req.Mode)), 0, 0, 0, false)
		return result
	}
	return s.Summarize(ctx, rows, req)
}

// Filter drops rows whose source code is excluded for this request.
func (s *SummaryService) Filter(ctx context.Context, rows []domain.InputRow, req SummaryRequest) []domain.InputRow {
	kept := s.filterFor(req).Apply(rows)
	if dropped := len(rows) - len(kept); dropped > 0 {
		s.metrics.RecordExcluded(ctx, dropped)
		s.logger.DebugContext(ctx, "rows excluded by source code",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(kept)))
	}
	return kept
}

// Extract reads every row from src.
func (s *SummaryService) Extract(ctx context.Context, src dataprocessing.RowSource) ([]domain.InputRow, error) {
	ctx, span := s.tracer.Start(ctx, "SummaryService.Extract",
		trace.WithAttributes(attribute.String("source.kind", src.Kind())))
	defer span.End()

	rows, err := src.Rows(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "row extraction failed",
			slog.String("source", src.Kind()),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	s.metrics.RecordExtracted(ctx, src.Kind(), len(rows))
	return rows, nil
}

// SummarizeSource extracts rows from src, filters them and summarizes
// them. Only extraction failures are returned as errors.
func (s *SummaryService) SummarizeSource(ctx context.Context, src dataprocessing.RowSource, req SummaryRequest) (domain.SummaryResult, error) {
	rows, err := s.Extract(ctx, src)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	return s.Summarize(ctx, rows, req), nil
}

// SummarizeDates summarizes the same rows for several dates concurrently.
// Results keep the order of dates and report the effective date, so a
// malformed date comes back as today. With no dates, req.TargetDate is used.
func (s *SummaryService) SummarizeDates(ctx context.Context, rows []domain.InputRow, dates []string, req SummaryRequest) ([]DatedSummary, error) {
	if len(dates) == 0 {
		dates = []string{req.TargetDate}
	}
	filtered := s.Filter(ctx, rows, req)

	out := make([]DatedSummary, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, date := range dates {
		i, date := i, s.summarizer.EffectiveDate(strings.TrimSpace(date))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = DatedSummary{Date: date, Result: s.summarize(gctx, filtered, date, req.Mode)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WorkbookSource returns a source reading sheet from an uploaded workbook.
// An empty sheet selects the configured default.
func (s *SummaryService) WorkbookSource(r io.Reader, name, sheet string) dataprocessing.RowSource {
	if sheet == "" {
		sheet = s.defaultSheet
	}
	return dataprocessing.NewExcelReaderSource(s.logger, r, name, sheet, s.table)
}

// UseSheets enables SheetSource. Call before serving requests.
func (s *SummaryService) UseSheets(svc *sheets.Service, spreadsheetID string) {
	s.sheets = svc
	s.spreadsheetID = spreadsheetID
}

// SheetsEnabled reports whether a Google Sheets client is configured.
func (s *SummaryService) SheetsEnabled() bool { return s.sheets != nil }

// SheetSource returns a source reading sheet of the configured
// spreadsheet. An empty sheet selects the configured default.
func (s *SummaryService) SheetSource(sheet string) (dataprocessing.RowSource, error) {
	if s.sheets == nil {
		return nil, apperrors.ErrSheetsDisabled
	}
	if sheet == "" {
		sheet = s.defaultSheet
	}
	return dataprocessing.NewGoogleSheetSource(s.logger, s.sheets, s.spreadsheetID, sheet, s.table), nil
}

func (s *SummaryService) summarize(ctx context.Context, rows []domain.InputRow, targetDate string, mode domain.SummaryMode) domain.SummaryResult {
	summarizer := s.summarizer.WithMode(mode)

	ctx, span := s.tracer.Start(ctx, "SummaryService.Summarize",
		trace.WithAttributes(
			attribute.String("summary.mode", string(summarizer.Mode())),
			attribute.String("summary.target_date", targetDate),
			attribute.Int("summary.rows_in", len(rows)),
		))
	defer span.End()

	start := time.Now()
	result := summarizer.Summarize(ctx, rows, targetDate)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Bool("summary.success", result.Success),
		attribute.Int("summary.waves", len(result.Rows)),
	)
	if !result.Success {
		span.SetStatus(codes.Error, result.Message)
	}
	s.metrics.RecordSummary(ctx, string(summarizer.Mode()), len(rows), len(result.Rows), elapsed, result.Success)

	return result
}

func (s *SummaryService) modeFor(mode domain.SummaryMode) domain.SummaryMode {
	if mode == "" {
		return s.summarizer.Mode()
	}
	return mode
}

func (s *SummaryService) filterFor(req SummaryRequest) *dataprocessing.SourceFilter {
	if req.Exclude == nil && req.SourceColumn == "" {
		return s.filter
	}
	column := req.SourceColumn
	if column == "" {
		column = s.filter.Column
	}
	exclude := strings.Join(s.filter.Exclude, ",")
	if req.Exclude != nil {
		exclude = *req.Exclude
	}
	return dataprocessing.NewSourceFilter(column, exclude, s.filter.CaseInsensitive, s.filter.TrimSpaces)
}
