// Package dataprocessing turns exported order rows into per-wave summaries.
//
// Rows arrive either as a JSON payload (DecodeRows) or from a RowSource
// such as an Excel workbook or a Google Sheets tab. A source flattens the
// worksheet grid with BuildRows, SourceFilter drops excluded source codes,
// and Summarizer groups what is left by wave for one ship date.
//
//	src := dataprocessing.NewExcelFileSource(logger, "orders.xlsx", "Sheet1", dataprocessing.DefaultTableOptions())
//	rows, err := src.Rows(ctx)
//	if err != nil {
//	    return err
//	}
//	rows = dataprocessing.DefaultSourceFilter().Apply(rows)
//	result := summarizer.Summarize(ctx, rows, "2025-03-14")
//
// Summarizer never returns an error. Every outcome, including malformed
// input, is a domain.SummaryResult with Success and a user-facing Message.
//
// # Dates
//
// Ship dates may be spreadsheet serials or free text. Serials keep the
// calendar date they encode. Text is parsed in the summarizer's location.
// A target date that is not YYYY-MM-DD falls back to today in that
// location.
package dataprocessing
