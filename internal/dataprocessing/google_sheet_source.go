package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// NewSheetsService creates a read-only Sheets client from a service
// account credentials file. Extra options are appended after the
// credentials.
func NewSheetsService(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*sheets.Service, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot read sheets credentials", err).WithContext("path", credentialsFile)
	}

	opts := append([]option.ClientOption{
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	}, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot create sheets client", err)
	}
	return svc, nil
}

// GoogleSheetSource reads order rows from a Google Sheets tab.
type GoogleSheetSource struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	opts          TableOptions
	logger        *slog.Logger
}

// NewGoogleSheetSource reads sheet of spreadsheetID through svc.
func NewGoogleSheetSource(logger *slog.Logger, svc *sheets.Service, spreadsheetID, sheet string, opts TableOptions) *GoogleSheetSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleSheetSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		opts:          opts,
		logger:        logger.With(slog.String("component", "sheets_source")),
	}
}

// Kind implements RowSource.
func (s *GoogleSheetSource) Kind() string { return "sheets" }

// A1Range is the range requested from the API, e.g. 'Orders'!A1:AB.
func (s *GoogleSheetSource) A1Range() string {
	start, end := s.opts.StartColumn, s.opts.EndColumn
	if start == "" {
		start = "A"
	}
	if end == "" {
		end = "AB"
	}
	quoted := "'" + strings.ReplaceAll(s.sheet, "'", "''") + "'"
	return fmt.Sprintf("%s!%s1:%s", quoted, start, end)
}

// Rows implements RowSource. Values are requested unformatted with dates
// as serial numbers, matching what ExcelSource produces.
func (s *GoogleSheetSource) Rows(ctx context.Context) ([]domain.InputRow, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.A1Range()).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, s.classify(err)
	}

	grid := make([][]domain.Cell, 0, len(resp.Values))
	for _, line := range resp.Values {
		cells := make([]domain.Cell, len(line))
		for j, v := range line {
			cells[j] = domain.CellFromValue(v)
		}
		grid = append(grid, cells)
	}

	rows := BuildRows(grid, s.opts)
	s.logger.InfoContext(ctx, "sheet rows extracted",
		slog.String("spreadsheet_id", s.spreadsheetID),
		slog.String("sheet", s.sheet),
		slog.Int("grid_rows", len(grid)),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// classify maps API failures onto application error types. The API
// reports an unknown tab as a 400 "Unable to parse range".
func (s *GoogleSheetSource) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound,
			apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return apperrors.NewNotFoundError(fmt.Sprintf("worksheet %q", s.sheet)).
				WithContext("sheet", s.sheet).
				WithContext("spreadsheet_id", s.spreadsheetID)
		}
	}
	return apperrors.NewSourceError("sheets API call failed", err).WithContext("spreadsheet_id", s.spreadsheetID)
}
