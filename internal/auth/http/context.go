// Package http provides authentication middleware and the admin bootstrap handler.
package http

import (
	"context"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// adminTokenKey is a context key type for storing the authenticated admin token.
type adminTokenKey struct{}

// callerKey is a context key type for storing the authenticated release caller.
type callerKey struct{}

// WithAdminToken stores the authenticated admin token in the context.
func WithAdminToken(ctx context.Context, token *authDomain.AdminToken) context.Context {
	return context.WithValue(ctx, adminTokenKey{}, token)
}

// GetAdminToken retrieves the authenticated admin token from the context.
func GetAdminToken(ctx context.Context) (*authDomain.AdminToken, bool) {
	token, ok := ctx.Value(adminTokenKey{}).(*authDomain.AdminToken)
	return token, ok
}

// WithCaller stores the authenticated caller in the context.
func WithCaller(ctx context.Context, caller *authDomain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller retrieves the authenticated caller from the context.
// Returns (caller, true) if present, or (nil, false) if CallerAuthMiddleware did not run.
func GetCaller(ctx context.Context) (*authDomain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(*authDomain.Caller)
	return caller, ok
}
