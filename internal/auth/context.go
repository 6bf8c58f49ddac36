package auth

import "context"

type contextKey struct{}

var claimsContextKey = contextKey{}

// ContextWithClaims stores the verified session claims for downstream handlers.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims put there by the auth middleware,
// or false when the request never passed the auth gate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
