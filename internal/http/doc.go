// Package http provides the read-only inspection endpoints.
//
// Endpoints:
//   - Root: /
//   - Health: /health (session info, uptime, counters)
//   - Output: /output (decoded text; ?raw=1 for bytes; ?offset=N to skip)
//   - Metrics: /metrics/current (latest sample as JSON)
//
// Handlers only read the latest published View; they never block the
// driving loop.
//
// Example Usage:
//
//	handlers := http.NewHandlers(app, session, metrics)
//	router.GET("/output", handlers.Output)
package http
