package middleware

import (
	"context"

	"github.com/mosketh/storefront/internal/session"
)

type contextKey string

const ctxSession contextKey = "session_bundle"

// SessionFromContext returns the bundle attached by the Session middleware.
func SessionFromContext(ctx context.Context) *session.Bundle {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Bundle); ok {
		return v
	}
	return nil
}

// WithSession injects the session bundle into the context for downstream handlers.
func WithSession(ctx context.Context, bundle *session.Bundle) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, bundle)
}
