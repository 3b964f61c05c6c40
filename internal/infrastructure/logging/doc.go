// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output defaults to stderr; stdout belongs to the mirrored shell output.
// Subsystems take a *zap.Logger named after themselves via Component.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Close()
//	logger.Component("terminal").Info("Shell started", zap.Int("pid", pid))
package logging
