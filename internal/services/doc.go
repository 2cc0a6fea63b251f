// Package services sits between the HTTP handlers and dataprocessing.
//
// SummaryService runs the wave pipeline (extract, filter, summarize) and
// owns the cross-cutting parts of a call: one OpenTelemetry span per stage,
// the summary metrics, and per-request overrides of mode and exclusions.
// Summaries for several ship dates run concurrently through errgroup; each
// one is independent and shares only the read-only filtered rows.
//
//	svc := services.NewSummaryService(summarizer, filter, table, "Sheet1", metrics, tracer, logger)
//	result, err := svc.SummarizeSource(ctx, src, services.SummaryRequest{TargetDate: "2025-03-14"})
//
// HealthService answers liveness, readiness and version checks. Readiness
// is the combination of the checks registered at startup.
package services
