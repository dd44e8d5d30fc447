package storefront

import (
	"context"
	"strings"
)

type ctxKey struct{}

// WithAccessToken attaches the customer's backend bearer token to outgoing calls.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, strings.TrimSpace(token))
}

// AccessTokenFromContext returns the bearer token, or "" for anonymous calls.
func AccessTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if token, ok := ctx.Value(ctxKey{}).(string); ok {
		return token
	}
	return ""
}
