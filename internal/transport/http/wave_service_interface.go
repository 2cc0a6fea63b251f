package http

import (
	"context"
	"io"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/services"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// WaveServiceInterface defines the interface for wave summary operations
type WaveServiceInterface interface {
	Summarize(ctx context.Context, rows []domain.InputRow, req services.SummaryRequest) domain.SummaryResult
	SummarizePayload(ctx context.Context, payload []byte, req services.SummaryRequest) domain.SummaryResult
	SummarizeDates(ctx context.Context, rows []domain.InputRow, dates []string, req services.SummaryRequest) ([]services.DatedSummary, error)
	Filter(ctx context.Context, rows []domain.InputRow, req services.SummaryRequest) []domain.InputRow
	Extract(ctx context.Context, src dataprocessing.RowSource) ([]domain.InputRow, error)
	WorkbookSource(r io.Reader, name, sheet string) dataprocessing.RowSource
	SheetSource(sheet string) (dataprocessing.RowSource, error)
}
