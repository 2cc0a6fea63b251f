package exporter

import (
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// SummaryHeaders returns the output columns of mode in sheet order.
func SummaryHeaders(mode domain.SummaryMode) []string {
	headers := []string{domain.FieldWave}
	if mode == domain.ModeTotal {
		headers = append(headers, domain.FieldOrderCount)
	} else {
		headers = append(headers, domain.FieldPCLOrderCount, domain.FieldLTLOrderCount)
	}
	return append(headers, domain.FieldSourceCodes, domain.FieldInducted, domain.FieldReqShipDate)
}

// SummaryRecords lays out rows under SummaryHeaders(mode).
func SummaryRecords(mode domain.SummaryMode, rows []domain.WaveSummaryRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.Wave}
		if mode == domain.ModeTotal {
			record = append(record, formatInt(r.OrderCount))
		} else {
			record = append(record, formatInt(r.PCLOrderCount), formatInt(r.LTLOrderCount))
		}
		records = append(records, append(record, r.SourceCodes, r.Inducted, r.ReqShipDate))
	}
	return records
}

// SummaryOptions returns the CSV write options for a summary table.
func SummaryOptions(mode domain.SummaryMode, rows []domain.WaveSummaryRow) WriteOptions {
	return WriteOptions{
		Headers:   SummaryHeaders(mode),
		Records:   SummaryRecords(mode, rows),
		BOMPrefix: true,
	}
}
