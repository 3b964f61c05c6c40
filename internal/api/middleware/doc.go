// Package middleware provides HTTP middleware for the read-only inspection API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for browser viewers
//   - RateLimit: Per-IP token bucket rate limiting with idle client cleanup
//   - RequestLogger: zap request logging
//
// Only GET and OPTIONS are allowed; nothing writes into the shell session.
//
// Example Usage:
//
//	router.Use(middleware.RequestLogger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
