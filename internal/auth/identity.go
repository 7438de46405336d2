// ABOUTME: Caller identity extracted from a request's bearer credentials.
// ABOUTME: Provides WithIdentity/IdentityFromContext for context propagation.

package auth

import "context"

// Identity holds the per-request caller credentials threaded through the
// session layer into tool execution. The token is opaque: it is forwarded to
// the platform API unmodified and never validated or logged here.
type Identity struct {
	Token      string // raw bearer token, empty when OAuth is disabled
	APIBaseURL string // resolved tenant base URL the token is intended for
}

// identityKey is the key type for storing Identity in a context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the Identity from the context. The zero
// Identity is returned when none is present (unauthenticated deployment).
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
