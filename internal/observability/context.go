package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	depositIDKey contextKey = "deposit_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithDepositID adds a deposit ID to the context.
func WithDepositID(ctx context.Context, depositID string) context.Context {
	return context.WithValue(ctx, depositIDKey, depositID)
}

// DepositIDFromContext retrieves the deposit ID from context.
// Returns empty string if not present.
func DepositIDFromContext(ctx context.Context) string {
	if v := ctx.Value(depositIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
