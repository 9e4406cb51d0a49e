package driven

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the correlation id of one remote
// call. Adapters forward it to the remote side.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
