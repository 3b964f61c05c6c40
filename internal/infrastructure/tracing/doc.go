/*
Package tracing tags inspection API requests with a trace ID.

# Overview

Every request carries an X-Trace-ID. A well-formed inbound value is kept so
a caller can correlate its own logs; otherwise a fresh "req_<ulid>" is
generated. The ID is stored in the request context, echoed in the response
header and picked up by the request logger.

# Usage

	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestLogger(logger))

	traceID := tracing.GetTraceID(c.Request.Context())
*/
package tracing
