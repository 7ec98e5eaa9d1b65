// Package reqctx threads per-request correlation values through contexts.
package reqctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	callerIDKey  ctxKey = "callerID"
)

// WithRequestID returns a context carrying the request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the correlation id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCallerID returns a context carrying the authenticated caller id.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

// CallerID returns the caller id stored in ctx, or "".
func CallerID(ctx context.Context) string {
	if v, ok := ctx.Value(callerIDKey).(string); ok {
		return v
	}
	return ""
}
