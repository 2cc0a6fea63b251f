package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// ExcelSource reads order rows from one worksheet of an .xlsx workbook.
type ExcelSource struct {
	name   string
	sheet  string
	opts   TableOptions
	open   func() (*excelize.File, error)
	logger *slog.Logger
}

// NewExcelFileSource reads sheet from the workbook at path.
func NewExcelFileSource(logger *slog.Logger, path, sheet string, opts TableOptions) *ExcelSource {
	return newExcelSource(logger, path, sheet, opts, func() (*excelize.File, error) {
		return excelize.OpenFile(path)
	})
}

// NewExcelReaderSource reads sheet from a workbook streamed from r, such
// as an uploaded file. name is used in logs only.
func NewExcelReaderSource(logger *slog.Logger, r io.Reader, name, sheet string, opts TableOptions) *ExcelSource {
	return newExcelSource(logger, name, sheet, opts, func() (*excelize.File, error) {
		return excelize.OpenReader(r)
	})
}

func newExcelSource(logger *slog.Logger, name, sheet string, opts TableOptions, open func() (*excelize.File, error)) *ExcelSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSource{
		name:   name,
		sheet:  sheet,
		opts:   opts,
		open:   open,
		logger: logger.With(slog.String("component", "excel_source")),
	}
}

// Kind implements RowSource.
func (s *ExcelSource) Kind() string { return "excel" }

// Rows implements RowSource.
func (s *ExcelSource) Rows(ctx context.Context) ([]domain.InputRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.open()
	if err != nil {
		return nil, apperrors.NewParsingError("cannot open workbook", err).WithContext("workbook", s.name)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("worksheet %q", s.sheet)).
			WithContext("sheet", s.sheet).
			WithContext("available", f.GetSheetList())
	}

	first, last, err := columnWindow(s.opts)
	if err != nil {
		return nil, err
	}

	raw, err := f.GetRows(s.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("cannot read worksheet", err).WithContext("sheet", s.sheet)
	}

	grid := make([][]domain.Cell, 0, len(raw))
	for i, line := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := make([]domain.Cell, 0, last-first+1)
		for j := first; j <= last && j < len(line); j++ {
			cells = append(cells, s.cell(f, line[j], j+1, i+1))
		}
		grid = append(grid, cells)
	}

	rows := BuildRows(grid, s.opts)
	s.logger.InfoContext(ctx, "worksheet rows extracted",
		slog.String("workbook", s.name),
		slog.String("sheet", s.sheet),
		slog.Int("grid_rows", len(grid)),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// cell types a raw value using the stored cell type, so date serials stay
// numeric and text that looks like a number stays text.
func (s *ExcelSource) cell(f *excelize.File, raw string, col, row int) domain.Cell {
	if raw == "" {
		return domain.NullCell()
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.StringCell(raw)
	}
	typ, err := f.GetCellType(s.sheet, name)
	if err != nil {
		return domain.StringCell(raw)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return domain.StringCell(raw)
	case excelize.CellTypeBool:
		return domain.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	default:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return domain.NumberCell(n)
		}
		return domain.StringCell(raw)
	}
}

// columnWindow returns zero-based inclusive column bounds.
func columnWindow(opts TableOptions) (int, int, error) {
	start, end := opts.StartColumn, opts.EndColumn
	if start == "" {
		start = "A"
	}
	if end == "" {
		end = "AB"
	}
	first, err := excelize.ColumnNameToNumber(start)
	if err != nil {
		return 0, 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid start column %q", start))
	}
	last, err := excelize.ColumnNameToNumber(end)
	if err != nil || last < first {
		return 0, 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid end column %q", end))
	}
	return first - 1, last - 1, nil
}
