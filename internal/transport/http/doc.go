// Package http implements the HTTP handlers of the wave summary service.
// Handlers stay thin: they decode and validate the request, call the
// summary service, and render the result. Business rules live in the
// services and dataprocessing packages.
//
// # Routes
//
// The wave routes are mounted under /api/waves:
//
//	POST /summary    rows + target_date → SummaryResult envelope
//	POST /summaries  rows + target_dates → []DatedSummary
//	POST /filter     rows → rows left after source-code exclusion
//	POST /extract    multipart workbook upload → rows (+ summary)
//	POST /sheets     configured Google spreadsheet → rows (+ summary)
//
// Health and version routes live under /api, and the Prometheus exporter
// is served at /metrics.
//
// # Errors
//
// A summary that cannot be produced (no rows, wrong shape, missing
// columns, unparseable dates) is still a 200: the envelope's success flag
// and message carry the outcome. Everything else is an RFC 7807 problem
// written by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/waves/summaries",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// WaveServiceInterface.
package http
