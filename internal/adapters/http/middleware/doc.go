// Package middleware provides the inbound request pipeline:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging → Timeout → router
//
// Every middleware has the shape func(http.Handler) http.Handler and
// composes with Chain.
package middleware
