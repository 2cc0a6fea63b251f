// Command wavesummary reads order rows from a workbook, a JSON file or a
// Google spreadsheet, drops excluded source codes and prints the wave
// summary for one or more ship dates as JSON.
//
// Usage:
//
//	wavesummary -file orders.xlsx -sheet Sheet1 -date 2025-03-14
//	wavesummary -json rows.json -date 2025-03-14,2025-03-15 -mode total
//	wavesummary -spreadsheet <id> -date 2025-03-14 -exclude Standard,Internal
//	wavesummary -file orders.xlsx -rows
//	wavesummary -file orders.xlsx -date 2025-03-14 -out summary.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/config"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/exporter"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/services"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/validation"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options holds the parsed command line.
type options struct {
	configFile   string
	file         string
	jsonFile     string
	spreadsheet  string
	sheet        string
	dates        []string
	mode         string
	exclude      *string
	sourceColumn string
	rowsOnly     bool
	out          string
	logLevel     string
	version      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("wavesummary", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	var dates, exclude string
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to config.yaml or configs/config.yaml when present)")
	fs.StringVar(&opts.file, "file", "", "read rows from this .xlsx workbook")
	fs.StringVar(&opts.jsonFile, "json", "", `read rows from this JSON file ("-" for stdin)`)
	fs.StringVar(&opts.spreadsheet, "spreadsheet", "", "read rows from this Google spreadsheet id (credentials from config)")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet name (defaults to summary.sheet_name)")
	fs.StringVar(&dates, "date", "", "comma-separated ship dates YYYY-MM-DD; missing or malformed dates use today")
	fs.StringVar(&opts.mode, "mode", "", "summary mode: split or total (defaults to summary.mode)")
	fs.StringVar(&exclude, "exclude", "", "comma-separated source codes to drop; empty disables exclusion")
	fs.StringVar(&opts.sourceColumn, "source-column", "", "column holding the source code")
	fs.BoolVar(&opts.rowsOnly, "rows", false, "print the filtered rows instead of a summary")
	fs.StringVar(&opts.out, "out", "", "also write the summary table to this .csv or .xlsx file")
	fs.StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.version {
		return opts, nil
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "exclude" {
			opts.exclude = &exclude
		}
	})
	for _, d := range strings.Split(dates, ",") {
		if d = strings.TrimSpace(d); d != "" {
			opts.dates = append(opts.dates, d)
		}
	}

	sources := 0
	for _, s := range []string{opts.file, opts.jsonFile, opts.spreadsheet} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of -file, -json or -spreadsheet is required")
	}
	if opts.out != "" && opts.rowsOnly {
		return nil, errors.New("-out writes a summary table and cannot be combined with -rows")
	}
	if opts.mode != "" {
		if _, err := domain.ParseSummaryMode(opts.mode); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "wavesummary:", err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		fmt.Fprintln(stderr, "wavesummary:", err)
		return exitFailure
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.spreadsheet != "" {
		cfg.Sheets.SpreadsheetID = opts.spreadsheet
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "wavesummary:", err)
		return exitFailure
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.EnableMetrics = false
	otelCfg.TraceWriter = stderr
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Error("failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	svc, err := newService(ctx, cfg, providers, logger)
	if err != nil {
		logger.Error("failed to build summary service", slog.String("error", err.Error()))
		return exitFailure
	}

	files := validation.NewFileValidator(logger)
	if err := checkFiles(files, opts); err != nil {
		logger.Error("invalid input", slog.String("error", err.Error()))
		return exitFailure
	}

	out, err := execute(ctx, svc, opts, stdin)
	if err != nil {
		logger.Error("wave summary failed", slog.String("error", err.Error()))
		return exitFailure
	}

	if opts.out != "" {
		if err := export(logger, opts.out, svc.Mode(), parseMode(opts.mode), out); err != nil {
			logger.Error("export failed", slog.String("error", err.Error()))
			return exitFailure
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to write output", slog.String("error", err.Error()))
		return exitFailure
	}
	return exitOK
}

// newService builds the summary service from the summary section of cfg.
func newService(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (*services.SummaryService, error) {
	loc, err := cfg.Summary.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", cfg.Summary.TimeZone, err)
	}

	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		Mode:     cfg.Summary.SummaryMode(),
		Location: loc,
	})
	filter := dataprocessing.NewSourceFilter(cfg.Summary.SourceColumn, cfg.Summary.ExcludeCSV(),
		cfg.Summary.CaseInsensitive, cfg.Summary.TrimSpaces)
	table := dataprocessing.TableOptions{
		ForceInclude: cfg.Summary.ForceInclude,
		SortColumn:   dataprocessing.DefaultTableOptions().SortColumn,
		StartColumn:  cfg.Summary.StartColumn,
		EndColumn:    cfg.Summary.EndColumn,
	}

	svc := services.NewSummaryService(summarizer, filter, table, cfg.Summary.SheetName, nil, providers.Tracer, logger)

	if cfg.Sheets.SpreadsheetID != "" {
		if cfg.Sheets.CredentialsFile == "" {
			return nil, errors.New("sheets.credentials_file is required to read a spreadsheet")
		}
		client, err := dataprocessing.NewSheetsService(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, err
		}
		svc.UseSheets(client, cfg.Sheets.SpreadsheetID)
	}
	return svc, nil
}

// execute reads the rows and produces the value printed on stdout: the
// filtered rows, a single summary envelope, or one summary per date.
func execute(ctx context.Context, svc *services.SummaryService, opts *options, stdin io.Reader) (interface{}, error) {
	req := services.SummaryRequest{
		Mode:         parseMode(opts.mode),
		Exclude:      opts.exclude,
		SourceColumn: opts.sourceColumn,
	}
	if len(opts.dates) == 1 {
		req.TargetDate = opts.dates[0]
	}

	// A single JSON summary reports malformed input in the envelope.
	if opts.jsonFile != "" && !opts.rowsOnly && len(opts.dates) <= 1 {
		payload, err := readPayload(opts.jsonFile, stdin)
		if err != nil {
			return nil, err
		}
		return svc.SummarizePayload(ctx, payload, req), nil
	}

	rows, err := readRows(ctx, svc, opts, stdin)
	if err != nil {
		return nil, err
	}

	if opts.rowsOnly {
		kept := svc.Filter(ctx, rows, req)
		if kept == nil {
			kept = []domain.InputRow{}
		}
		return kept, nil
	}

	if len(opts.dates) <= 1 {
		return svc.Summarize(ctx, rows, req), nil
	}
	return svc.SummarizeDates(ctx, rows, opts.dates, req)
}

func readRows(ctx context.Context, svc *services.SummaryService, opts *options, stdin io.Reader) ([]domain.InputRow, error) {
	switch {
	case opts.file != "":
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return svc.Extract(ctx, svc.WorkbookSource(f, opts.file, opts.sheet))

	case opts.jsonFile != "":
		payload, err := readPayload(opts.jsonFile, stdin)
		if err != nil {
			return nil, err
		}
		return dataprocessing.DecodeRows(payload)

	default:
		src, err := svc.SheetSource(opts.sheet)
		if err != nil {
			return nil, err
		}
		return svc.Extract(ctx, src)
	}
}

// checkFiles validates the input and output paths named on the command line.
func checkFiles(files *validation.FileValidator, opts *options) error {
	if opts.file != "" {
		if err := files.ValidateExcelFile(opts.file); err != nil {
			return err
		}
	}
	if opts.jsonFile != "" && opts.jsonFile != "-" {
		if err := files.ValidateFile(opts.jsonFile); err != nil {
			return err
		}
	}
	if opts.out != "" {
		return files.ValidateOutputFile(opts.out)
	}
	return nil
}

// export writes the summary rows of out to path as CSV or XLSX. Failed
// envelopes contribute no rows.
func export(logger *slog.Logger, path string, defaultMode, mode domain.SummaryMode, out interface{}) error {
	if mode == "" {
		mode = defaultMode
	}

	var rows []domain.WaveSummaryRow
	switch v := out.(type) {
	case domain.SummaryResult:
		rows = v.Rows
	case []services.DatedSummary:
		for _, d := range v {
			rows = append(rows, d.Result.Rows...)
		}
	default:
		return fmt.Errorf("nothing to export from %T", out)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return exporter.NewWorkbookWriter(logger).WriteSummary(path, "", mode, rows)
	}
	return exporter.NewCSVWriter(logger).WriteCSVFile(path, exporter.SummaryOptions(mode, rows))
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func parseMode(s string) domain.SummaryMode {
	if s == "" {
		return ""
	}
	mode, _ := domain.ParseSummaryMode(s)
	return mode
}
