package authapi

import (
	"context"

	"uniblog/cmd/internal/auth"
)

type contextKey struct{}

var identityKey contextKey

// withIdentity attaches the authenticated caller to the request context.
func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller attached by RequireAuth.
// ok is false on requests that did not pass through the middleware.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
