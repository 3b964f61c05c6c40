// Package ws streams shell output and metrics over WebSocket.
//
// On connect the client receives everything written so far as one binary
// frame, then a binary frame for each batch of new output. Metrics arrive
// as JSON text frames at most once per metrics interval. The stream is
// read-only: client data frames are discarded.
//
// Message Types (Server → Client):
//   - binary frame: raw pty output, in order, never repeated
//   - metrics: {"type":"metrics","tick":N,"metrics":{...}}
//   - system: greeting with the session id
//
// Example Usage:
//
//	handler := ws.NewHandler(app, logger, ws.WithMetrics(metrics))
//	router.GET("/stream", handler.HandleConnection)
package ws
