package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// DefaultSummarySheet names the worksheet written by WorkbookWriter.
const DefaultSummarySheet = "Wave Summary"

// WorkbookWriter writes summary tables as .xlsx worksheets.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// WriteSummary saves rows as sheet of a new workbook at filePath. Counts
// are written as numbers and the header row is bold and frozen.
func (w *WorkbookWriter) WriteSummary(filePath, sheet string, mode domain.SummaryMode, rows []domain.WaveSummaryRow) error {
	if sheet == "" {
		sheet = DefaultSummarySheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := SummaryHeaders(mode)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}

	for r, row := range rows {
		values := []interface{}{row.Wave}
		if mode == domain.ModeTotal {
			values = append(values, row.OrderCount)
		} else {
			values = append(values, row.PCLOrderCount, row.LTLOrderCount)
		}
		values = append(values, row.SourceCodes, row.Inducted, row.ReqShipDate)

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := w.styleHeader(f, sheet, len(headers)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("cannot create export directory", err).WithContext("path", filePath)
	}
	if err := f.SaveAs(filePath); err != nil {
		return apperrors.NewStorageError("cannot save workbook", err).WithContext("path", filePath)
	}

	w.logger.Info("Summary workbook written",
		slog.String("file_path", filePath),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))
	return nil
}

func (w *WorkbookWriter) styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
