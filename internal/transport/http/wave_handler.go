package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/middleware"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/services"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/validation"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 8 << 20

// SummaryBody is the request body of POST /summary.
type SummaryBody struct {
	Rows         json.RawMessage `json:"rows"`
	TargetDate   string          `json:"target_date"`
	Mode         string          `json:"mode" validate:"omitempty,summarymode"`
	Exclude      *string         `json:"exclude"`
	SourceColumn string          `json:"source_column" validate:"omitempty,max=128"`
}

// SummariesBody is the request body of POST /summaries.
type SummariesBody struct {
	Rows         json.RawMessage `json:"rows"`
	TargetDates  []string        `json:"target_dates" validate:"required,min=1,max=31"`
	Mode         string          `json:"mode" validate:"omitempty,summarymode"`
	Exclude      *string         `json:"exclude"`
	SourceColumn string          `json:"source_column" validate:"omitempty,max=128"`
}

// FilterBody is the request body of POST /filter.
type FilterBody struct {
	Rows         json.RawMessage `json:"rows"`
	Exclude      *string         `json:"exclude"`
	SourceColumn string          `json:"source_column" validate:"omitempty,max=128"`
}

// SheetBody is the request body of POST /sheets.
type SheetBody struct {
	Sheet        string  `json:"sheet" validate:"omitempty,sheetname"`
	TargetDate   string  `json:"target_date"`
	Mode         string  `json:"mode" validate:"omitempty,summarymode"`
	Exclude      *string `json:"exclude"`
	SourceColumn string  `json:"source_column" validate:"omitempty,max=128"`
}

// extractForm holds the non-file fields of POST /extract.
type extractForm struct {
	Sheet        string `json:"sheet" validate:"omitempty,sheetname"`
	TargetDate   string `json:"target_date"`
	Mode         string `json:"mode" validate:"omitempty,summarymode"`
	SourceColumn string `json:"source_column" validate:"omitempty,max=128"`
}

// ExtractResponse is the response of POST /extract. Summary is present
// only when a target date was supplied.
type ExtractResponse struct {
	Rows    []domain.InputRow     `json:"rows"`
	Summary *domain.SummaryResult `json:"summary,omitempty"`
}

// WaveHandler handles wave summary HTTP requests with RFC 7807 compliance
type WaveHandler struct {
	service      WaveServiceInterface
	validator    *middleware.Validator
	files        *validation.FileValidator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewWaveHandler creates a new wave handler
func NewWaveHandler(service WaveServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *WaveHandler {
	return &WaveHandler{
		service:      service,
		validator:    validator,
		files:        validation.NewFileValidator(logger),
		logger:       infrastructure.WithComponent(logger, "wave_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the wave routes
func (h *WaveHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Group(func(r chi.Router) {
		r.Post("/summary", h.Summarize)
		r.Post("/summaries", h.SummarizeDates)
		r.Post("/filter", h.Filter)
		r.Post("/sheets", h.SummarizeSheet)
	})
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/extract", h.Extract)

	return r
}

// Summarize handles POST /api/waves/summary. Every outcome the summarizer
// can report, including malformed rows, is a 200 with the envelope.
func (h *WaveHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var body SummaryBody
	if !h.decode(w, r, &body) {
		return
	}
	if len(body.Rows) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.MissingParameter("rows"))
		return
	}

	req := services.SummaryRequest{
		TargetDate:   body.TargetDate,
		Mode:         parseMode(body.Mode),
		Exclude:      body.Exclude,
		SourceColumn: body.SourceColumn,
	}
	render.JSON(w, r, h.service.SummarizePayload(r.Context(), body.Rows, req))
}

// SummarizeDates handles POST /api/waves/summaries.
func (h *WaveHandler) SummarizeDates(w http.ResponseWriter, r *http.Request) {
	var body SummariesBody
	if !h.decode(w, r, &body) {
		return
	}
	rows, ok := h.rows(w, r, body.Rows)
	if !ok {
		return
	}

	req := services.SummaryRequest{
		Mode:         parseMode(body.Mode),
		Exclude:      body.Exclude,
		SourceColumn: body.SourceColumn,
	}
	results, err := h.service.SummarizeDates(r.Context(), rows, body.TargetDates, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, results)
}

// Filter handles POST /api/waves/filter and returns the rows that survive
// the source-code exclusion.
func (h *WaveHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var body FilterBody
	if !h.decode(w, r, &body) {
		return
	}
	rows, ok := h.rows(w, r, body.Rows)
	if !ok {
		return
	}

	kept := h.service.Filter(r.Context(), rows, services.SummaryRequest{
		Exclude:      body.Exclude,
		SourceColumn: body.SourceColumn,
	})
	if kept == nil {
		kept = []domain.InputRow{}
	}
	render.JSON(w, r, kept)
}

// Extract handles POST /api/waves/extract: a multipart upload with a
// "file" workbook and optional "sheet", "target_date", "mode", "exclude"
// and "source_column" fields.
func (h *WaveHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := extractForm{
		Sheet:        strings.TrimSpace(r.FormValue("sheet")),
		TargetDate:   strings.TrimSpace(r.FormValue("target_date")),
		Mode:         r.FormValue("mode"),
		SourceColumn: r.FormValue("source_column"),
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.MissingParameter("file"))
		return
	}
	defer file.Close()

	if err := h.files.ValidateWorkbook(header.Filename, file); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Extract(r.Context(), h.service.WorkbookSource(file, header.Filename, form.Sheet))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.InputRow{}
	}

	resp := ExtractResponse{Rows: rows}
	if form.TargetDate != "" {
		req := services.SummaryRequest{
			TargetDate:   form.TargetDate,
			Mode:         parseMode(form.Mode),
			SourceColumn: form.SourceColumn,
		}
		if values, ok := r.MultipartForm.Value["exclude"]; ok && len(values) > 0 {
			req.Exclude = &values[0]
		}
		summary := h.service.Summarize(r.Context(), rows, req)
		resp.Summary = &summary
	}

	h.logger.InfoContext(r.Context(), "workbook extracted",
		slog.String("file", header.Filename),
		slog.String("sheet", form.Sheet),
		slog.Int("rows", len(rows)),
		slog.Bool("summarized", resp.Summary != nil))
	render.JSON(w, r, resp)
}

// SummarizeSheet handles POST /api/waves/sheets: rows are read from the
// configured Google spreadsheet and summarized when target_date is set.
func (h *WaveHandler) SummarizeSheet(w http.ResponseWriter, r *http.Request) {
	var body SheetBody
	if !h.decode(w, r, &body) {
		return
	}

	src, err := h.service.SheetSource(strings.TrimSpace(body.Sheet))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows, err := h.service.Extract(r.Context(), src)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.InputRow{}
	}

	resp := ExtractResponse{Rows: rows}
	if target := strings.TrimSpace(body.TargetDate); target != "" {
		summary := h.service.Summarize(r.Context(), rows, services.SummaryRequest{
			TargetDate:   target,
			Mode:         parseMode(body.Mode),
			Exclude:      body.Exclude,
			SourceColumn: body.SourceColumn,
		})
		resp.Summary = &summary
	}
	render.JSON(w, r, resp)
}

// decode reads and validates a JSON body, writing the problem response on
// failure.
func (h *WaveHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, err)
			return false
		}
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return false
	}
	if err := h.validator.ValidateStruct(dst); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// rows decodes a rows member that must hold an array of row objects.
func (h *WaveHandler) rows(w http.ResponseWriter, r *http.Request, raw json.RawMessage) ([]domain.InputRow, bool) {
	if len(raw) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.MissingParameter("rows"))
		return nil, false
	}
	rows, err := dataprocessing.DecodeRows(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return rows, true
}

// parseMode maps a validated mode string; empty keeps the service default.
func parseMode(s string) domain.SummaryMode {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	mode, err := domain.ParseSummaryMode(s)
	if err != nil {
		return ""
	}
	return mode
}
