// Package requestid propagates a correlation id through a context.Context,
// for tying together log lines from one refresh-all batch or one Gmail
// poll cycle.
package requestid

import "context"

type contextKey string

const requestIDContextKey contextKey = "request_id"

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// FromContext returns the request id stored in ctx, or "" if none is set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
