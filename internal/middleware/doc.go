// Package middleware holds the chi middleware chain of the wave API:
// request ids, structured request logging, panic recovery, rate limiting,
// request timeouts, body size limits, OpenTelemetry instrumentation and
// struct validation. Failures are written as RFC 7807 problems through
// errors.ErrorHandler.
package middleware
