package tracing

import (
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware creates Gin middleware that assigns each request a trace ID
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, ok := ParseTraceID(c.GetHeader(Header))
		if !ok {
			traceID = NewTraceID()
		}

		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))
		c.Header(Header, string(traceID))

		c.Next()
	}
}
