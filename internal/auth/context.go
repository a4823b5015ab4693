package auth

import (
	"context"

	"github.com/bilemo/bilemo/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const principalKey contextKey = "principal"

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// CustomerIDFromContext returns the customer of the principal, or "" when anonymous.
func CustomerIDFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.CustomerID
	}
	return ""
}
