// Package middleware provides the HTTP middleware chain of the converter
// server: request IDs, access logging, panic recovery, CORS and per-route
// metrics.
//
// Middleware are plain func(http.Handler) http.Handler values and compose
// outermost-last:
//
//	h = middleware.CORS(&cfg.Server.CORS)(h)
//	h = middleware.RequestID(h)
//	h = middleware.Logging(h)
//	h = middleware.Recovery(h)
//
// Error responses share one JSON shape written by WriteError:
//
//	{"error": {"type": "busy", "message": "an export is already running"}}
package middleware
