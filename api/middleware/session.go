package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/internal/session"
	"github.com/mosketh/storefront/pkg/config"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
)

// SessionLoader resolves a session id to its bundle.
type SessionLoader interface {
	Get(ctx context.Context, sessionID string) (*session.Bundle, error)
}

// Session resolves the caller's session cookie, issuing a new one when it is
// missing or malformed, and attaches the bundle to the request context.
func Session(loader SessionLoader, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "mosketh_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sessionID = c.Value
				}
			}
			if sessionID == "" {
				sessionID = session.NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			bundle, err := loader.Get(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			if logg != nil {
				if userID, ok := bundle.Auth.Identity(ctx).UserID(); ok {
					ctx = logg.WithUserID(ctx, userID)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, bundle)))
		})
	}
}
