// Package server wires the inspection API.
//
// Routes:
//   - GET /, /health
//   - GET /output, /metrics/current
//   - GET /metrics (Prometheus exposition)
//   - GET /stream (WebSocket)
//
// Middleware order: recovery, trace ID, request logging, metrics, CORS,
// rate limiting.
//
// Example Usage:
//
//	srv := server.New(server.Config{Addr: cfg.Server.Addr()}, deps)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("Server failed", zap.Error(err))
//	}
package server
