// Package server serves the customer data preview page and the JSON API over
// HTTP.
//
// # Routes
//
//   - GET / - preview page with fetch and export controls
//   - POST /api/fetch - load a new record set from the configured source
//   - GET /api/records - the held record set as a projected table
//   - GET /api/export/{format} - download the held set as xlsx, pdf, csv, json or html
//   - GET /api/sources - registered source types and the active one
//   - GET /api/exports - recent export history, newest first (?limit=N)
//   - GET /health, GET /ready, GET /version - probes
//   - GET /metrics - Prometheus metrics when enabled
//
// Fetch and export requests made from the preview page (Accept: text/html)
// are answered with a 303 redirect back to the page carrying a notice. API
// clients receive JSON; failures use the body
//
//	{"error": {"type": "empty_input", "message": "No data to export."}}
//
// with status 409 while the same operation is running, 422 for an export of
// an empty set, 500 when rendering fails and 502 when the source is
// unavailable.
//
// # Middleware Chain
//
// Requests pass through, outermost first: recovery, logging, request ID and
// CORS. Each API route is additionally wrapped in metrics and tracing
// middleware labelled with its route pattern.
//
// # Lifecycle
//
//	srv := server.NewServer(&cfg.Server, server.Deps{...})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down gracefully within
// server.shutdown_timeout.
package server
