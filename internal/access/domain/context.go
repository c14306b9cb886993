package domain

import "context"

type scopeContextKey struct{}

// WithScope stores the resolved scope for the current request.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the scope resolved for the current actor.
// Callers that find no scope must treat the request as denied.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(Scope)
	return scope, ok
}
