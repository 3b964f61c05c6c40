package tracing

import (
	"context"

	"github.com/GriffinCanCode/claritty/internal/shared/id"
)

// Header carries the trace ID in requests and responses.
const Header = "X-Trace-ID"

// maxTraceIDLen bounds inbound IDs that end up in logs.
const maxTraceIDLen = 128

// TraceID represents a unique trace identifier
type TraceID string

type contextKey string

const traceIDKey contextKey = "trace_id"

// NewTraceID generates a request-scoped trace ID.
func NewTraceID() TraceID {
	return TraceID(id.NewRequestID())
}

// WithTraceID stores traceID in ctx.
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// ParseTraceID accepts a caller-supplied ID if it is safe to log: non-empty,
// bounded, and made of letters, digits, '-' and '_' only.
func ParseTraceID(s string) (TraceID, bool) {
	if s == "" || len(s) > maxTraceIDLen {
		return "", false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", false
		}
	}
	return TraceID(s), true
}
