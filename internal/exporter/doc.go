// Package exporter writes wave summary tables to files.
//
// CSVWriter writes CSV with an optional UTF-8 BOM for Excel. WorkbookWriter
// writes an .xlsx worksheet with excelize. Both lay the table out with
// SummaryHeaders, so the columns match the JSON field order of
// domain.WaveSummaryRow for the same mode.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(logger)
//	err := csvWriter.WriteCSVFile("out/summary.csv", exporter.SummaryOptions(mode, result.Rows))
//
//	xlsxWriter := exporter.NewWorkbookWriter(logger)
//	err = xlsxWriter.WriteSummary("out/summary.xlsx", "", mode, result.Rows)
package exporter
