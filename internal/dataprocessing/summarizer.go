package dataprocessing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// InductionThreshold is the number of chute-assigned rows a wave must
// exceed to count as inducted.
const InductionThreshold = 5

// Summarizer turns exported order rows into per-wave summaries for a ship
// date. It holds only immutable configuration, so one instance can serve
// concurrent calls.
type Summarizer struct {
	logger   *slog.Logger
	mode     domain.SummaryMode
	location *time.Location
	now      func() time.Time
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	Mode     domain.SummaryMode // ModeCategorySplit when empty
	Location *time.Location     // zone for free-text dates and the fallback date; time.Local when nil
	Now      func() time.Time   // clock for the fallback date; time.Now when nil
}

// DefaultSummarizerConfig returns the configuration used by the CLI and the
// HTTP server unless overridden.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		Mode:     domain.ModeCategorySplit,
		Location: time.Local,
		Now:      time.Now,
	}
}

// NewSummarizer creates a wave summarizer with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	config.Mode = config.Mode.Normalize()
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Summarizer{
		logger:   logger.With(slog.String("component", "wave_summarizer")),
		mode:     config.Mode,
		location: config.Location,
		now:      config.Now,
	}
}

// Mode reports the output shape produced by this summarizer.
func (s *Summarizer) Mode() domain.SummaryMode { return s.mode }

// WithMode returns a summarizer sharing this one's configuration but
// producing the given mode. Empty keeps the current mode.
func (s *Summarizer) WithMode(mode domain.SummaryMode) *Summarizer {
	if mode == "" {
		return s
	}
	if mode = mode.Normalize(); mode == s.mode {
		return s
	}
	clone := *s
	clone.mode = mode
	return &clone
}

// EffectiveDate returns targetDate when it has the YYYY-MM-DD shape and
// otherwise today in the summarizer's zone.
func (s *Summarizer) EffectiveDate(targetDate string) string {
	return EffectiveTargetDate(targetDate, s.now().In(s.location))
}

// SummarizeJSON is the string-in, string-out form used at process
// boundaries. It never panics and always returns a complete envelope.
func (s *Summarizer) SummarizeJSON(ctx context.Context, payload, targetDate string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "wave summary panicked", slog.Any("panic", r))
			out = encodeResult(domain.NewSummaryFailure(fmt.Sprint(r)))
		}
	}()

	rows, err := DecodeRows([]byte(payload))
	if err != nil {
		return encodeResult(domain.NewSummaryFailure(failureMessage(err)))
	}
	return encodeResult(s.Summarize(ctx, rows, targetDate))
}

// Summarize aggregates rows for targetDate. A targetDate that is not
// YYYY-MM-DD is replaced by today's date.
func (s *Summarizer) Summarize(ctx context.Context, rows []domain.InputRow, targetDate string) (result domain.SummaryResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "wave summary panicked", slog.Any("panic", r))
			result = domain.NewSummaryFailure(fmt.Sprint(r))
		}
	}()

	start := time.Now()
	s.logger.DebugContext(ctx, "wave summary started",
		slog.Int("rows", len(rows)),
		slog.String("mode", string(s.mode)),
		slog.String("target_date", targetDate))

	if len(rows) == 0 {
		return domain.NewSummaryNotice("No input rows.")
	}

	if stop := s.checkColumns(rows[0]); stop != nil {
		s.logger.InfoContext(ctx, "wave summary rejected", slog.String("reason", stop.result.Message))
		return stop.result
	}

	effective := s.EffectiveDate(targetDate)
	if effective != targetDate {
		s.logger.DebugContext(ctx, "target date replaced by today",
			slog.String("requested", targetDate),
			slog.String("effective", effective))
	}

	dated, stop := s.filterByDate(rows, effective)
	if stop != nil {
		s.logger.InfoContext(ctx, "no rows for target date", slog.String("target_date", effective))
		return stop.result
	}

	summary := s.aggregate(dated).summaryRows(s.mode, effective)

	s.logger.InfoContext(ctx, "wave summary complete",
		slog.Int("rows_in", len(rows)),
		slog.Int("rows_dated", len(dated)),
		slog.Int("waves", len(summary)),
		slog.String("target_date", effective),
		slog.Duration("duration", time.Since(start)))

	return domain.SummaryResult{
		Success: true,
		Message: fmt.Sprintf("Summarized %d unique Waves for %s.", len(summary), effective),
		Rows:    summary,
	}
}

// halt ends the pipeline early with a finished envelope.
type halt struct {
	result domain.SummaryResult
}

// checkColumns infers the schema from the first row only.
func (s *Summarizer) checkColumns(first domain.InputRow) *halt {
	var missing []string
	for _, col := range domain.RequiredColumns(s.mode) {
		if !first.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &halt{domain.NewSummaryFailure("Missing required columns: " + strings.Join(missing, ", "))}
}

func (s *Summarizer) filterByDate(rows []domain.InputRow, date string) ([]domain.InputRow, *halt) {
	kept := make([]domain.InputRow, 0, len(rows))
	for _, row := range rows {
		if NormalizeDate(row.Get(domain.ColumnReqShipDate), s.location) == date {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, &halt{domain.NewSummaryNotice(fmt.Sprintf("No rows with %q = %s.", domain.ColumnReqShipDate, date))}
	}
	return kept, nil
}

type orderSet map[string]struct{}

func (o orderSet) add(v string) { o[v] = struct{}{} }

// waveAggregate is owned by a single aggregation and discarded with it.
type waveAggregate struct {
	wave       string
	orders     orderSet
	pcl        orderSet
	ltl        orderSet
	sources    orderSet
	chuteCount int
}

// waveAggregation keeps waves in first-appearance order.
type waveAggregation struct {
	byWave map[string]*waveAggregate
	order  []*waveAggregate
}

func (s *Summarizer) aggregate(rows []domain.InputRow) *waveAggregation {
	agg := &waveAggregation{byWave: make(map[string]*waveAggregate)}
	for _, row := range rows {
		wave := row.Get(domain.ColumnWave).String()
		order := row.Get(domain.ColumnOrderNum).String()
		if wave == "" || order == "" {
			continue
		}

		w := agg.get(wave)
		if src := row.Get(domain.ColumnSourceCode).String(); src != "" {
			w.sources.add(src)
		}
		if !row.Get(domain.ColumnChute).IsBlank() {
			w.chuteCount++
		}
		if bucket := w.bucket(s.mode, row); bucket != nil {
			bucket.add(order)
		}
	}
	return agg
}

func (a *waveAggregation) get(wave string) *waveAggregate {
	if w, ok := a.byWave[wave]; ok {
		return w
	}
	w := &waveAggregate{
		wave:    wave,
		orders:  orderSet{},
		pcl:     orderSet{},
		ltl:     orderSet{},
		sources: orderSet{},
	}
	a.byWave[wave] = w
	a.order = append(a.order, w)
	return w
}

// bucket picks the order set a row counts toward. In split mode a tag that
// is neither PCL nor LTL counts toward no set.
func (w *waveAggregate) bucket(mode domain.SummaryMode, row domain.InputRow) orderSet {
	if mode == domain.ModeTotal {
		return w.orders
	}
	switch row.Get(domain.ColumnCategory).String() {
	case domain.CategoryPCL:
		return w.pcl
	case domain.CategoryLTL:
		return w.ltl
	default:
		return nil
	}
}

func (a *waveAggregation) summaryRows(mode domain.SummaryMode, date string) []domain.WaveSummaryRow {
	out := make([]domain.WaveSummaryRow, 0, len(a.order))
	for _, w := range a.order {
		row := domain.WaveSummaryRow{
			Mode:        mode,
			Wave:        w.wave,
			SourceCodes: joinSorted(w.sources),
			ReqShipDate: date,
		}
		if mode == domain.ModeTotal {
			row.OrderCount = len(w.orders)
		} else {
			row.PCLOrderCount = len(w.pcl)
			row.LTLOrderCount = len(w.ltl)
		}
		if w.chuteCount > InductionThreshold {
			row.Inducted = domain.InductedMarker
		}
		out = append(out, row)
	}

	// Ties keep first-appearance order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PrimaryCount() > out[j].PrimaryCount()
	})
	return out
}

func joinSorted(set orderSet) string {
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}

func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func encodeResult(result domain.SummaryResult) string {
	data, err := json.Marshal(result)
	if err != nil {
		return `{"success":false,"message":"failed to encode summary","rows":[]}`
	}
	return string(data)
}
