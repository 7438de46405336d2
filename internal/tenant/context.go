// ABOUTME: Request-context plumbing for the per-request tenant resolution result.
// ABOUTME: Provides WithContext/FromContext mirroring the auth identity pattern.

package tenant

import "context"

// ctxKey is the key type for storing a tenant Context in a context.Context.
type ctxKey struct{}

// WithContext returns a new request context with the tenant Context attached.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext retrieves the tenant Context from the request context. The
// second return is false when resolution never ran (e.g. unit tests hitting
// a handler directly).
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}
